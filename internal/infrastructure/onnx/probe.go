//go:build !cuda
// +build !cuda

package onnx

import "ai-inspector/internal/domain/entity"

// probeGPU без тега cuda ничего не проверяет: решение принимает ONNX Runtime.
func probeGPU(entity.GPUOptions) error {
	return nil
}
