package port

import (
	"context"

	"ai-inspector/internal/domain/entity"
)

// InferenceSession загруженная модель
type InferenceSession interface {
	// Run выполняет модель и возвращает оценки классов
	Run(ctx context.Context, input *entity.Tensor) ([]float32, error)

	// Close освобождает нативные ресурсы сессии
	Close() error
}

// SessionFactory создаёт сессию на нужном устройстве.
// Ошибки OpenGPU, после которых можно перейти на CPU, оборачивают entity.ErrGPUBackend.
type SessionFactory interface {
	OpenGPU(opts entity.GPUOptions) (InferenceSession, error)
	OpenCPU() (InferenceSession, error)
}
