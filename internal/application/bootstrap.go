package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// BootstrapConfig параметры инициализации AI-инспекции.
type BootstrapConfig struct {
	Target            string  // название камеры или линии для сообщений
	GPUMemoryLimitGiB float64 // 0 без ограничения
}

// Dependencies загрузчики внешних ресурсов.
type Dependencies struct {
	Labels   func() ([]string, error)
	Results  func() (port.ResultMapper, error)
	Program  func() (port.VisionProgram, error)
	Sessions func() (port.SessionFactory, error)
	Alerter  port.Alerter
	Logger   logrus.FieldLogger
}

// Bootstrap инициализирует AI-инспекцию. Любая ошибка выключает подсистему:
// сервис не создаётся, статус Disabled, оператор получает оповещение.
func Bootstrap(ctx context.Context, cfg BootstrapConfig, deps Dependencies) (*InspectionService, entity.Status) {
	svc, err := bootstrap(ctx, cfg, deps)
	if err != nil {
		title := fmt.Sprintf("%s: AI inspection initialization error", cfg.Target)
		msg := fmt.Sprintf("AI inspection of camera %s failed to initialize and has been stopped.\n"+
			"Press the stop button and contact the administrator.\n\n"+
			"Administrator: check the [AI inspection] settings of camera %s.\n\n"+
			"Cause:\n%v", cfg.Target, cfg.Target, err)
		deps.Logger.WithError(err).Error("AI inspection disabled")
		deps.Alerter.Notify(title, msg)
		return nil, entity.Disabled(err)
	}
	return svc, entity.Ready(svc.Backend())
}

func bootstrap(ctx context.Context, cfg BootstrapConfig, deps Dependencies) (*InspectionService, error) {
	labels, err := deps.Labels()
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	mapper, err := deps.Results()
	if err != nil {
		return nil, fmt.Errorf("result table: %w", err)
	}

	program, err := deps.Program()
	if err != nil {
		return nil, fmt.Errorf("vision program: %w", err)
	}
	pre, err := NewPreprocessor(ctx, program, deps.Alerter, deps.Logger, cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("vision program: %w", err)
	}

	factory, err := deps.Sessions()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	session, backend, err := OpenSession(factory, cfg.GPUMemoryLimitGiB, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	deps.Logger.WithFields(logrus.Fields{
		"backend": backend.String(),
		"labels":  len(labels),
	}).Info("AI inspection is ready")

	return NewInspectionService(pre, session, backend, labels, mapper, deps.Logger), nil
}

// OpenSession создаёт сессию на GPU (устройство 0), а при ошибке GPU на CPU.
// Ошибки, не связанные с GPU, возвращаются без попытки CPU.
func OpenSession(factory port.SessionFactory, gpuMemoryLimitGiB float64, logger logrus.FieldLogger) (port.InferenceSession, entity.Backend, error) {
	opts := entity.GPUOptions{
		DeviceID:         0,
		MemoryLimitBytes: entity.GPUMemoryLimitBytes(gpuMemoryLimitGiB),
	}

	session, err := factory.OpenGPU(opts)
	if err == nil {
		return session, entity.BackendGPU, nil
	}
	if !errors.Is(err, entity.ErrGPUBackend) {
		logger.WithError(err).Error("model initialization failed")
		return nil, entity.BackendUnknown, err
	}

	logger.WithError(err).Warn("GPU execution is not available on this machine, running on CPU instead")

	session, err = factory.OpenCPU()
	if err != nil {
		return nil, entity.BackendUnknown, fmt.Errorf("cpu session: %w", err)
	}
	return session, entity.BackendCPU, nil
}
