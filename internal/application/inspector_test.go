package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ai-inspector/internal/domain/entity"
)

func TestInspector_Disabled(t *testing.T) {
	in := NewInspector(nil, entity.Disabled(errors.New("model file: not found")))

	res, err := in.Inspect(context.Background(), "a.png")
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrInspectionDisabled)
	require.ErrorContains(t, err, "model file: not found")
	require.NoError(t, in.Close())
}

func TestInspector_ReadyWithoutServiceIsDisabled(t *testing.T) {
	in := NewInspector(nil, entity.Ready(entity.BackendCPU))
	require.False(t, in.Status().IsReady())

	_, err := in.Inspect(context.Background(), "a.png")
	require.ErrorIs(t, err, ErrInspectionDisabled)
}

func TestInspector_Ready(t *testing.T) {
	session := &fakeSession{scores: []float32{0.2, 0.8}}
	svc, _ := newTestInspection(t, &fakeCall{image: solidImage(2, 2, 1, 2, 3)}, session)
	in := NewInspector(svc, entity.Ready(svc.Backend()))

	res, err := in.Inspect(context.Background(), "part.png")
	require.NoError(t, err)
	require.Equal(t, "Scratch", res.Label)

	require.NoError(t, in.Close())
	require.True(t, session.closed)
}
