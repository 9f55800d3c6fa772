package onnx

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// Session загруженная модель поверх DynamicAdvancedSession.
// Тензоры создаются на каждый вызов и уничтожаются до возврата.
type Session struct {
	session *ort.DynamicAdvancedSession
	logger  logrus.FieldLogger
}

// Run выполняет модель синхронно и возвращает копию выходных оценок.
func (s *Session) Run(ctx context.Context, input *entity.Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := ort.NewTensor(ort.NewShape(input.Shape[:]...), input.Data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer s.destroy("input tensor", in)

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				s.destroy("output tensor", o)
			}
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}

	data := out.GetData()
	scores := make([]float32, len(data))
	copy(scores, data)
	return scores, nil
}

// Close освобождает сессию.
func (s *Session) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

func (s *Session) destroy(what string, v ort.Value) {
	if err := v.Destroy(); err != nil {
		s.logger.WithError(err).Warnf("destroy %s", what)
	}
}

var _ port.InferenceSession = (*Session)(nil)
