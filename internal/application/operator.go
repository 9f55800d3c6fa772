package app

import (
	"context"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState переводит оператора в новое состояние, создавая его при первом обращении.
func (s *OperatorService) SetState(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, userID, state); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, chatID)
}

func (s *OperatorService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *OperatorService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// Finish запоминает результат инспекции и возвращает оператора в главное меню.
func (s *OperatorService) Finish(ctx context.Context, userID, chatID int64, result *entity.InspectionResult) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	op.Remember(result)
	if err := s.repo.Save(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}
