package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
	"ai-inspector/internal/infrastructure/storage"
)

// countingRepository считает обращения к хранилищу операторов.
type countingRepository struct {
	port.OperatorRepository
	updates []entity.OperatorState
	saves   int
}

func (r *countingRepository) UpdateState(ctx context.Context, userID int64, state entity.OperatorState) error {
	r.updates = append(r.updates, state)
	return r.OperatorRepository.UpdateState(ctx, userID, state)
}

func (r *countingRepository) Save(ctx context.Context, op *entity.Operator) error {
	r.saves++
	return r.OperatorRepository.Save(ctx, op)
}

func TestOperatorService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryOperatorRepository()
	svc := NewOperatorService(repo)
	ctx := context.Background()

	op, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, op.State)

	op, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, op.State)
}

func TestOperatorService_Finish(t *testing.T) {
	repo := storage.NewMemoryOperatorRepository()
	svc := NewOperatorService(repo)
	ctx := context.Background()

	_, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)

	op, err := svc.Finish(ctx, 2, 20, &entity.InspectionResult{Label: "OK"})
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, op.State)
	require.Equal(t, "OK", op.LastResult.Label)
}

func TestOperatorService_SetStateGoesThroughUpdateState(t *testing.T) {
	repo := &countingRepository{OperatorRepository: storage.NewMemoryOperatorRepository()}
	svc := NewOperatorService(repo)
	ctx := context.Background()

	op, err := svc.SetState(ctx, 3, 30, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, op.State)
	require.Equal(t, int64(30), op.ChatID)

	_, err = svc.BeginCheck(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, []entity.OperatorState{entity.StateProcessing, entity.StateAwaitingPhoto}, repo.updates)
	require.Zero(t, repo.saves)
}
