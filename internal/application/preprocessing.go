package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// Preprocessor создаёт входное изображение модели с помощью программы машинного
// зрения. Хранит код ошибки последнего вызова; не потокобезопасен.
type Preprocessor struct {
	processing port.ProcedureCall
	alerter    port.Alerter
	logger     logrus.FieldLogger
	target     string

	lastErrCode string
}

// NewPreprocessor выполняет процедуру инициализации программы и готовит
// вызов процедуры обработки.
func NewPreprocessor(ctx context.Context, program port.VisionProgram, alerter port.Alerter, logger logrus.FieldLogger, target string) (*Preprocessor, error) {
	initCall, err := program.Procedure(port.ProcInit)
	if err != nil {
		return nil, err
	}
	processing, err := program.Procedure(port.ProcProcessing)
	if err != nil {
		return nil, err
	}
	if err := initCall.Execute(ctx); err != nil {
		return nil, fmt.Errorf("run %s: %w", port.ProcInit, err)
	}

	return &Preprocessor{
		processing: processing,
		alerter:    alerter,
		logger:     logger,
		target:     target,
	}, nil
}

// LastErrorCode возвращает код ошибки последнего вызова Preprocess, "" если ошибки не было.
func (p *Preprocessor) LastErrorCode() string {
	return p.lastErrCode
}

// Preprocess возвращает буфер BGRA для модели или nil, если изображение не получено.
// Причину nil-результата можно узнать через LastErrorCode.
func (p *Preprocessor) Preprocess(ctx context.Context, imagePath string) (buf *entity.PixelBuffer) {
	p.lastErrCode = ""

	defer func() {
		if r := recover(); r != nil {
			p.unexpected(imagePath, fmt.Errorf("panic: %v", r))
			buf = nil
		}
	}()

	p.processing.SetInputCtrlParam(port.ParamImagePath, imagePath)
	if err := p.processing.Execute(ctx); err != nil {
		if isCancelled(err) {
			p.logger.WithError(err).WithField("path", imagePath).Debug("preprocessing cancelled")
			return nil
		}
		p.unexpected(imagePath, err)
		return nil
	}

	p.lastErrCode = p.processing.OutputCtrlParam(port.OutErrCode)
	errMsg := p.processing.OutputCtrlParam(port.OutErrMsg)
	if p.lastErrCode != "" {
		if errMsg != "" {
			p.logger.WithFields(logrus.Fields{
				"path":     imagePath,
				"err_code": p.lastErrCode,
			}).Warnf("preprocessing error: %s", errMsg)
		}
		return nil
	}

	img := p.processing.OutputImage(port.OutImage)
	if img == nil {
		return nil
	}

	buf, err := img.ToBGRA()
	if err != nil {
		p.unexpected(imagePath, err)
		return nil
	}
	return buf
}

func (p *Preprocessor) unexpected(imagePath string, err error) {
	p.logger.WithError(err).WithField("path", imagePath).Error("preprocessing failed")

	title := fmt.Sprintf("%s: AI input image error", p.target)
	msg := fmt.Sprintf("Camera %s failed to generate the AI input image.\n\nMessage:\n%v", p.target, err)
	p.alerter.NotifyOnce(title, msg)
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
