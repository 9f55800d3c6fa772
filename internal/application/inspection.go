package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

var ErrInspectionDisabled = errors.New("AI inspection is disabled")

// InspectionService выполняет AI-инспекцию: препроцессинг, тензор, модель, метка.
// Вызовы сериализуются: программа машинного зрения и сессия модели не потокобезопасны.
type InspectionService struct {
	mu           sync.Mutex
	preprocessor *Preprocessor
	session      port.InferenceSession
	backend      entity.Backend
	labels       []string
	mapper       port.ResultMapper
	logger       logrus.FieldLogger
}

// NewInspectionService создаёт сервис поверх готовых зависимостей.
func NewInspectionService(pre *Preprocessor, session port.InferenceSession, backend entity.Backend,
	labels []string, mapper port.ResultMapper, logger logrus.FieldLogger) *InspectionService {
	return &InspectionService{
		preprocessor: pre,
		session:      session,
		backend:      backend,
		labels:       labels,
		mapper:       mapper,
		logger:       logger,
	}
}

// Backend возвращает устройство, на котором выполняется модель.
func (s *InspectionService) Backend() entity.Backend {
	return s.backend
}

// Inspect проверяет одно изображение. Ошибки препроцессинга превращаются в
// результат с меткой "ERR,<code>", ошибка возвращается только при сбое модели
// или отмене ctx.
func (s *InspectionService) Inspect(ctx context.Context, imagePath string) (*entity.InspectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{"path": imagePath, "backend": s.backend.String()})

	buf := s.preprocessor.Preprocess(ctx, imagePath)
	if err := ctx.Err(); err != nil {
		log.WithError(err).Info("inspection cancelled")
		return nil, err
	}
	if buf == nil {
		res := s.result(imagePath, entity.ErrorLabel(s.preprocessor.LastErrorCode()), 0)
		log.WithField("label", res.Label).Infof("AI judgement: %s, image is not processed", res.DisplayName)
		return res, nil
	}

	tensor, err := entity.TensorFromBGR(buf)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}

	scores, err := s.session.Run(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	if len(scores) != len(s.labels) {
		log.Warnf("model returned %d scores for %d labels", len(scores), len(s.labels))
	}

	idx, score := entity.ArgMax(scores)
	res := s.result(imagePath, s.labelAt(idx), score)
	log.WithFields(logrus.Fields{
		"label":      res.Label,
		"confidence": res.ConfidencePercent(),
	}).Infof("AI judgement: %s (%.2f%%)", res.DisplayName, res.ConfidencePercent())

	return res, nil
}

// labelAt возвращает метку класса. Индекс вне списка меток даёт метку ошибки.
func (s *InspectionService) labelAt(idx int) string {
	switch {
	case idx == entity.NoClass:
		return entity.ErrorLabel(entity.ErrCodeNoPositive)
	case idx < 0 || idx >= len(s.labels):
		return entity.ErrorLabel(entity.ErrCodeLabelOutOfRange)
	default:
		return s.labels[idx]
	}
}

func (s *InspectionService) result(imagePath, label string, score float32) *entity.InspectionResult {
	display, category := s.mapper.Lookup(label)
	return &entity.InspectionResult{
		ImagePath:    imagePath,
		Label:        label,
		DisplayName:  display,
		CategoryCode: category,
		Confidence:   score,
		Backend:      s.backend,
	}
}

// Close освобождает сессию модели.
func (s *InspectionService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Close()
}
