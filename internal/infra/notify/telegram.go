package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends short operational notices to the admin chat. A nil *Telegram
// is a no-op, so callers never have to branch on whether it is configured.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

func (t *Telegram) send(text string) {
	if t == nil {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("telegram notification failed", "err", err)
	}
}

// RunFailed notifies about a failed bulk recompute.
func (t *Telegram) RunFailed(err error) {
	t.send(fmt.Sprintf("⚠️ price update failed: %v", err))
}

// RunChanged notifies about a run that materially changed prices.
func (t *Telegram) RunChanged(count int) {
	t.send(fmt.Sprintf("✅ price update: %d products repriced", count))
}
