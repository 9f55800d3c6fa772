package onnx

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// Config параметры загрузки модели.
type Config struct {
	ModelPath      string
	InputName      string
	OutputName     string // пустое: первый выход модели
	LibraryPath    string // если пусто, ищем в стандартных местах
	IntraOpThreads int    // 0: по числу физических ядер
}

// Factory создаёт сессии ONNX Runtime для одной модели.
type Factory struct {
	cfg        Config
	outputName string
	logger     logrus.FieldLogger
}

// NewFactory инициализирует окружение ONNX Runtime и проверяет входы и выходы модели.
func NewFactory(cfg Config, logger logrus.FieldLogger) (*Factory, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("empty model path")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if cfg.InputName == "" {
		return nil, errors.New("empty model input name")
	}

	if err := initializeEnvironment(cfg.LibraryPath, logger); err != nil {
		return nil, err
	}

	outputName, err := inspectModel(cfg)
	if err != nil {
		destroyEnvironment(logger)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"model":  cfg.ModelPath,
		"input":  cfg.InputName,
		"output": outputName,
	}).Info("model loaded")

	return &Factory{cfg: cfg, outputName: outputName, logger: logger}, nil
}

func inspectModel(cfg Config) (string, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return "", fmt.Errorf("model io info: %w", err)
	}
	return resolveIO(cfg, inputs, outputs)
}

func resolveIO(cfg Config, inputs, outputs []ort.InputOutputInfo) (string, error) {
	found := false
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
		if in.Name != cfg.InputName {
			continue
		}
		if len(in.Dimensions) != 4 {
			return "", fmt.Errorf("input %q: expected 4D input, got %dD", in.Name, len(in.Dimensions))
		}
		found = true
	}
	if !found {
		return "", fmt.Errorf("input %q not found, model inputs: %v", cfg.InputName, names)
	}

	if len(outputs) == 0 {
		return "", errors.New("model has no outputs")
	}
	if cfg.OutputName == "" {
		return outputs[0].Name, nil
	}
	for _, out := range outputs {
		if out.Name == cfg.OutputName {
			return out.Name, nil
		}
	}
	return "", fmt.Errorf("output %q not found", cfg.OutputName)
}

// OpenGPU создаёт сессию с CUDA-провайдером. Ошибки, связанные с GPU,
// оборачивают entity.ErrGPUBackend.
func (f *Factory) OpenGPU(opts entity.GPUOptions) (port.InferenceSession, error) {
	if err := probeGPU(opts); err != nil {
		return nil, gpuError("probe device", err)
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer f.destroy("session options", so.Destroy)

	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, gpuError("cuda provider options", err)
	}
	defer f.destroy("cuda provider options", cuda.Destroy)

	if err := cuda.Update(cudaProviderValues(opts)); err != nil {
		return nil, gpuError("update cuda options", err)
	}
	if err := so.AppendExecutionProviderCUDA(cuda); err != nil {
		return nil, gpuError("append cuda provider", err)
	}

	sess, err := f.newSession(so)
	if err != nil {
		return nil, gpuError("create session", err)
	}
	return sess, nil
}

// OpenCPU создаёт сессию без дополнительных провайдеров.
func (f *Factory) OpenCPU() (port.InferenceSession, error) {
	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer f.destroy("session options", so.Destroy)

	threads := intraOpThreads(f.cfg.IntraOpThreads)
	if threads > 0 {
		if err := so.SetIntraOpNumThreads(threads); err != nil {
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}
	f.logger.WithFields(cpuFields()).WithField("threads", threads).Info("using CPU execution")

	return f.newSession(so)
}

func (f *Factory) newSession(so *ort.SessionOptions) (*Session, error) {
	sess, err := ort.NewDynamicAdvancedSession(f.cfg.ModelPath,
		[]string{f.cfg.InputName}, []string{f.outputName}, so)
	if err != nil {
		return nil, err
	}
	return &Session{session: sess, logger: f.logger}, nil
}

// Close уничтожает окружение ONNX Runtime. Вызывается после закрытия всех сессий.
func (f *Factory) Close() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// destroyEnvironment освобождает окружение, если фабрику создать не удалось.
func destroyEnvironment(logger logrus.FieldLogger) {
	if !ort.IsInitialized() {
		return
	}
	if err := ort.DestroyEnvironment(); err != nil {
		logger.WithError(err).Warn("destroy onnxruntime environment")
	}
}

func (f *Factory) destroy(what string, fn func() error) {
	if err := fn(); err != nil {
		f.logger.WithError(err).Warnf("destroy %s", what)
	}
}

// cudaProviderValues собирает параметры CUDA-провайдера.
func cudaProviderValues(opts entity.GPUOptions) map[string]string {
	values := map[string]string{
		"device_id": strconv.Itoa(opts.DeviceID),
	}
	if opts.MemoryLimitBytes > 0 {
		values["gpu_mem_limit"] = strconv.FormatUint(opts.MemoryLimitBytes, 10)
	}
	return values
}

func gpuError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", entity.ErrGPUBackend, step, err)
}

var _ port.SessionFactory = (*Factory)(nil)
