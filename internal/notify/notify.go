// Package notify sends messages to users over Telegram. The core only
// sees the Notifier port; the bot client is owned by the caller that
// wires the server together.
package notify

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a plain-text message to a Telegram account.
type Notifier interface {
	SendMessage(telegramID, text string) error
}

// Telegram is the bot-backed Notifier.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(botToken string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) SendMessage(telegramID, text string) error {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram id %q: %w", telegramID, err)
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Nop drops every message. Used when no bot token is configured.
type Nop struct{}

func (Nop) SendMessage(string, string) error { return nil }
