package alert

import (
	"github.com/sirupsen/logrus"

	"ai-inspector/internal/domain/port"
)

// LogAlerter пишет оповещения в лог, когда канала оператора нет.
type LogAlerter struct {
	logger logrus.FieldLogger
	dedup  *Deduper
}

func NewLogAlerter(logger logrus.FieldLogger, dedup *Deduper) *LogAlerter {
	return &LogAlerter{logger: logger, dedup: dedup}
}

func (a *LogAlerter) Notify(title, message string) {
	a.logger.WithField("title", title).Error(message)
}

func (a *LogAlerter) NotifyOnce(title, message string) {
	if !a.dedup.Allow(title, message) {
		a.logger.WithField("title", title).Debug("alert is already shown")
		return
	}
	a.Notify(title, message)
}

var _ port.Alerter = (*LogAlerter)(nil)
