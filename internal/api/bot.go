package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "ai-inspector/internal/application"
	"ai-inspector/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот AI-инспекции деталей.

📸 Отправьте мне фото детали, и модель определит её класс.

📋 Команды:
/check — начать проверку детали
/status — состояние AI-инспекции
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото детали
2️⃣ Программа машинного зрения выделит область детали
3️⃣ Модель определит класс, вы получите название, категорию и уверенность

💡 Рекомендации:
• Снимайте при хорошем освещении
• Используйте тёмный однотонный фон
• Деталь должна целиком попадать в кадр

📋 Команды:
/check — начать проверку
/status — состояние AI-инспекции
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото детали для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото детали для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgDisabled        = "⛔ AI-инспекция выключена. Обратитесь к администратору."
)

// Client часть Telegram Bot API, которой пользуется бот.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Inspector проверяет изображения и сообщает состояние подсистемы.
type Inspector interface {
	Inspect(ctx context.Context, imagePath string) (*entity.InspectionResult, error)
	Status() entity.Status
}

// Bot представляет Telegram-бота
type Bot struct {
	client     Client
	operators  *app.OperatorService
	inspector  Inspector
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(client Client, operators *app.OperatorService, inspector Inspector, logger logrus.FieldLogger) *Bot {
	return &Bot{
		client:     client,
		operators:  operators,
		inspector:  inspector,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.client.GetUpdatesChan(u)
	defer b.client.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, userID, chatID, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if !b.inspector.Status().IsReady() {
			b.sendMessage(chatID, msgDisabled)
			return
		}
		if _, err := b.operators.BeginCheck(ctx, userID, chatID); err != nil {
			b.logger.WithError(err).Error("begin check")
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		if _, err := b.operators.Cancel(ctx, userID, chatID); err != nil {
			b.logger.WithError(err).Error("cancel")
		}
		b.sendMessage(chatID, msgCancelled)

	case "status":
		op, err := b.operators.Get(ctx, userID, chatID)
		if err != nil {
			b.logger.WithError(err).Error("get operator")
		}
		b.sendMessage(chatID, formatStatus(b.inspector.Status(), op))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if !b.inspector.Status().IsReady() {
		b.sendMessage(chatID, msgDisabled)
		return
	}

	b.setState(ctx, userID, chatID, entity.StateProcessing)
	b.sendMessage(chatID, msgProcessing)

	// Файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	path, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.WithError(err).Error("download photo")
		b.sendMessage(chatID, msgProcessingError)
		b.setState(ctx, userID, chatID, entity.StateMainMenu)
		return
	}
	defer os.Remove(path)

	res, err := b.inspector.Inspect(ctx, path)
	if err != nil {
		b.logger.WithError(err).Error("inspect photo")
		text := msgProcessingError
		if errors.Is(err, app.ErrInspectionDisabled) {
			text = msgDisabled
		}
		b.sendMessage(chatID, text)
		b.setState(ctx, userID, chatID, entity.StateMainMenu)
		return
	}

	if _, err := b.operators.Finish(ctx, userID, chatID, res); err != nil {
		b.logger.WithError(err).Error("save inspection result")
	}
	b.sendMessage(chatID, formatResult(res))
}

// downloadFile скачивает файл из Telegram во временный файл и возвращает его путь
func (b *Bot) downloadFile(ctx context.Context, fileID string) (string, error) {
	fileURL, err := b.client.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: status %s", resp.Status)
	}

	f, err := os.CreateTemp("", "inspect-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("read file: %w", err)
	}

	return f.Name(), nil
}

func (b *Bot) setState(ctx context.Context, userID, chatID int64, state entity.OperatorState) {
	if _, err := b.operators.SetState(ctx, userID, chatID, state); err != nil {
		b.logger.WithError(err).Error("set operator state")
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.client.Send(msg); err != nil {
		b.logger.WithError(err).Error("send message")
	}
}

func formatResult(res *entity.InspectionResult) string {
	var sb strings.Builder
	if res.IsError() {
		sb.WriteString("⚠️ Изображение не обработано\n\n")
	} else {
		sb.WriteString("🔍 Результат AI-инспекции\n\n")
	}
	fmt.Fprintf(&sb, "Класс: %s\n", res.DisplayName)
	if res.CategoryCode != "" {
		fmt.Fprintf(&sb, "Категория: %s\n", res.CategoryCode)
	}
	if !res.IsError() {
		fmt.Fprintf(&sb, "Уверенность: %.1f%%\n", res.ConfidencePercent())
	}
	fmt.Fprintf(&sb, "Устройство: %s", res.Backend)
	return sb.String()
}

func formatStatus(status entity.Status, op *entity.Operator) string {
	var sb strings.Builder
	if status.IsReady() {
		fmt.Fprintf(&sb, "✅ AI-инспекция работает (%s)", status.Backend)
	} else {
		fmt.Fprintf(&sb, "⛔ AI-инспекция выключена\nПричина: %s", status.Reason)
	}
	if op != nil && op.LastResult != nil {
		fmt.Fprintf(&sb, "\n\nПоследняя проверка: %s", op.LastResult.DisplayName)
	}
	return sb.String()
}
