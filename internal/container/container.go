package container

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"ai-inspector/config"
	app "ai-inspector/internal/application"
	"ai-inspector/internal/domain/port"
	"ai-inspector/internal/infrastructure/alert"
	"ai-inspector/internal/infrastructure/onnx"
	"ai-inspector/internal/infrastructure/storage"
	"ai-inspector/internal/infrastructure/vision"
)

type Container struct {
	Inspector *app.Inspector
	Operators *app.OperatorService
	Alerter   port.Alerter

	factory *onnx.Factory
	logger  logrus.FieldLogger
}

// New собирает сервисы приложения. Ошибки инициализации AI-инспекции не
// возвращаются: подсистема выключается, статус доступен через Inspector.Status().
// sender может быть nil, тогда оповещения пишутся только в лог.
func New(ctx context.Context, cfg *config.Config, sender alert.Sender, logger logrus.FieldLogger) *Container {
	c := &Container{
		Operators: app.NewOperatorService(storage.NewMemoryOperatorRepository()),
		Alerter:   newAlerter(cfg, sender, logger),
		logger:    logger,
	}

	deps := app.Dependencies{
		Labels: func() ([]string, error) {
			return storage.LoadLabels(cfg.LabelsPath)
		},
		Results: func() (port.ResultMapper, error) {
			return storage.LoadResultTable(cfg.ResultTablePath)
		},
		Program: func() (port.VisionProgram, error) {
			p, err := vision.LoadProgram(cfg.VisionProgramPath)
			if err != nil {
				return nil, err
			}
			logger.WithFields(logrus.Fields{
				"program": p.Name,
				"engine":  vision.BackendName,
			}).Info("vision program loaded")
			return p, nil
		},
		Sessions: func() (port.SessionFactory, error) {
			f, err := onnx.NewFactory(onnx.Config{
				ModelPath:      cfg.ModelPath,
				InputName:      cfg.ModelInputName,
				OutputName:     cfg.ModelOutputName,
				LibraryPath:    cfg.OnnxRuntimeLib,
				IntraOpThreads: cfg.IntraOpThreads,
			}, logger)
			if err != nil {
				return nil, err
			}
			c.factory = f
			return f, nil
		},
		Alerter: c.Alerter,
		Logger:  logger,
	}

	svc, status := app.Bootstrap(ctx, app.BootstrapConfig{
		Target:            cfg.InspectTarget,
		GPUMemoryLimitGiB: cfg.GPUMemoryLimitGiB,
	}, deps)
	c.Inspector = app.NewInspector(svc, status)

	return c
}

func newAlerter(cfg *config.Config, sender alert.Sender, logger logrus.FieldLogger) port.Alerter {
	dedup := alert.NewDeduper(cfg.AlertDedupWindow)
	if sender == nil || cfg.OperatorChatID == 0 {
		return alert.NewLogAlerter(logger, dedup)
	}
	return alert.NewTelegramAlerter(sender, cfg.OperatorChatID, dedup, logger)
}

// Close освобождает сессию модели, затем окружение ONNX Runtime.
func (c *Container) Close() error {
	err := c.Inspector.Close()
	if c.factory != nil {
		err = errors.Join(err, c.factory.Close())
	}
	return err
}
