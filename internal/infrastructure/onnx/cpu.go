package onnx

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/sirupsen/logrus"
)

// intraOpThreads: явно заданное число потоков или число физических ядер.
func intraOpThreads(configured int) int {
	if configured > 0 {
		return configured
	}
	return cpuid.CPU.PhysicalCores
}

func cpuFields() logrus.Fields {
	return logrus.Fields{
		"cpu":     cpuid.CPU.BrandName,
		"cores":   cpuid.CPU.PhysicalCores,
		"avx2":    cpuid.CPU.Supports(cpuid.AVX2),
		"avx512f": cpuid.CPU.Supports(cpuid.AVX512F),
	}
}
