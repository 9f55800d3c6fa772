//go:build cuda
// +build cuda

package onnx

import (
	"fmt"

	"gorgonia.org/cu"

	"ai-inspector/internal/domain/entity"
)

// probeGPU проверяет наличие устройства и то, что лимит памяти не превышает
// объём памяти устройства.
func probeGPU(opts entity.GPUOptions) error {
	n, err := cu.NumDevices()
	if err != nil {
		return fmt.Errorf("query cuda devices: %w", err)
	}
	if opts.DeviceID >= n {
		return fmt.Errorf("cuda device %d not found, %d devices available", opts.DeviceID, n)
	}

	if opts.MemoryLimitBytes == 0 {
		return nil
	}
	total, err := cu.Device(opts.DeviceID).TotalMem()
	if err != nil {
		return fmt.Errorf("query device memory: %w", err)
	}
	if uint64(total) < opts.MemoryLimitBytes {
		return fmt.Errorf("gpu memory limit %d exceeds device memory %d", opts.MemoryLimitBytes, total)
	}
	return nil
}
