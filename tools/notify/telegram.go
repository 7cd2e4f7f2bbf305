package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramEndpoint is the Bot API URL pattern (token, method). Tests point it
// at a local server.
var TelegramEndpoint = tgbotapi.APIEndpoint

type telegramSender struct {
	token string
	bot   *tgbotapi.BotAPI
}

// sendTelegram delivers text to the configured chat. The bot client is
// created on first use and cached until the token changes.
func (n *Notifier) sendTelegram(ctx context.Context, cfg Config, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sender, err := n.telegramSender(cfg.TelegramToken)
	if err != nil {
		return err
	}

	if _, err := sender.bot.Send(tgbotapi.NewMessage(cfg.TelegramChatID, text)); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

func (n *Notifier) telegramSender(token string) (*telegramSender, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.telegram != nil && n.telegram.token == token {
		return n.telegram, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, TelegramEndpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	slog.Debug("Telegram notifier authorized", "username", bot.Self.UserName)

	n.telegram = &telegramSender{token: token, bot: bot}
	return n.telegram, nil
}
