package alert

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"ai-inspector/internal/domain/port"
)

// Sender отправляет сообщения Telegram; *tgbotapi.BotAPI реализует его.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter отправляет оповещения в чат оператора.
type TelegramAlerter struct {
	sender Sender
	chatID int64
	dedup  *Deduper
	logger logrus.FieldLogger
}

func NewTelegramAlerter(sender Sender, chatID int64, dedup *Deduper, logger logrus.FieldLogger) *TelegramAlerter {
	return &TelegramAlerter{sender: sender, chatID: chatID, dedup: dedup, logger: logger}
}

// Notify отправляет оповещение всегда. Ошибка отправки только логируется,
// оповещение при этом остаётся в логе.
func (a *TelegramAlerter) Notify(title, message string) {
	log := a.logger.WithField("title", title)
	log.Error(message)

	msg := tgbotapi.NewMessage(a.chatID, formatAlert(title, message))
	if _, err := a.sender.Send(msg); err != nil {
		log.WithError(err).Warn("send alert to operator chat")
	}
}

func (a *TelegramAlerter) NotifyOnce(title, message string) {
	if !a.dedup.Allow(title, message) {
		a.logger.WithField("title", title).Debug("alert is already shown")
		return
	}
	a.Notify(title, message)
}

func formatAlert(title, message string) string {
	return fmt.Sprintf("⚠️ %s\n\n%s", title, message)
}

var _ port.Alerter = (*TelegramAlerter)(nil)
