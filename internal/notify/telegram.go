package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tally/internal/amqp"
)

// Telegram sends budget alerts to a Telegram chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

var _ Notifier = (*Telegram)(nil)

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	text := formatAlert(msg)
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatAlert(msg *amqp.BudgetAlertMessage) string {
	switch msg.Level {
	case amqp.LevelOverBudget:
		return fmt.Sprintf("🚨 Budget exceeded: %s\nSpent %s of %s (%.0f%%)",
			msg.Category, msg.Spent, msg.Limit, msg.Percentage)
	default:
		return fmt.Sprintf("⚠️ Budget almost used up: %s\nSpent %s of %s (%.0f%%)",
			msg.Category, msg.Spent, msg.Limit, msg.Percentage)
	}
}
