package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorLabel(t *testing.T) {
	require.Equal(t, "ERR,ERR_NoROI", ErrorLabel("ERR_NoROI"))
	require.Equal(t, "ERR,ERR_UndefinedError", ErrorLabel(""))
}

func TestInspectionResult_IsError(t *testing.T) {
	r := &InspectionResult{Label: ErrorLabel("ERR_NoROI")}
	require.True(t, r.IsError())

	r = &InspectionResult{Label: "OK", Confidence: 0.875}
	require.False(t, r.IsError())
	require.InDelta(t, 87.5, r.ConfidencePercent(), 1e-6)
}

func TestGPUMemoryLimitBytes(t *testing.T) {
	require.Equal(t, uint64(0), GPUMemoryLimitBytes(0))
	require.Equal(t, uint64(0), GPUMemoryLimitBytes(-1))
	require.Equal(t, uint64(2*1024*1024*1024), GPUMemoryLimitBytes(2))
	require.Equal(t, uint64(512*1024*1024), GPUMemoryLimitBytes(0.5))
}

func TestStatus(t *testing.T) {
	require.True(t, Ready(BackendGPU).IsReady())

	s := Disabled(ErrGPUBackend)
	require.False(t, s.IsReady())
	require.Equal(t, ErrGPUBackend.Error(), s.Reason)
	require.Equal(t, "none", s.Backend.String())
}
