package entity

import "errors"

// ErrGPUBackend помечает ошибки, после которых можно откатиться на CPU.
var ErrGPUBackend = errors.New("gpu backend unavailable")

// Backend — устройство, на котором выполняется модель.
type Backend string

const (
	BackendUnknown Backend = ""
	BackendCPU     Backend = "CPU"
	BackendGPU     Backend = "GPU"
)

func (b Backend) String() string {
	if b == BackendUnknown {
		return "none"
	}
	return string(b)
}

// GPUOptions настройки CUDA-провайдера.
type GPUOptions struct {
	DeviceID         int
	MemoryLimitBytes uint64 // 0 без ограничения
}

// GPUMemoryLimitBytes переводит лимит из ГиБ в байты.
func GPUMemoryLimitBytes(gib float64) uint64 {
	if gib <= 0 {
		return 0
	}
	return uint64(gib * 1024 * 1024 * 1024)
}
