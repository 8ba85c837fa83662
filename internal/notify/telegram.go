package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramSink posts escalation alerts to an operations chat.
type TelegramSink struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *logrus.Logger
}

// NewTelegramSink creates an alert sink posting to the given chat.
func NewTelegramSink(token string, chatID int64, logger *logrus.Logger) (*TelegramSink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Ops alert channel authorized on account %s", api.Self.UserName)

	return &TelegramSink{api: api, chatID: chatID, logger: logger}, nil
}

// Alert sends the subject and body as one message to the ops chat.
func (t *TelegramSink) Alert(_ context.Context, subject, body string) error {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("⚠ *%s*\n%s", subject, body))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send ops alert: %w", err)
	}
	return nil
}
