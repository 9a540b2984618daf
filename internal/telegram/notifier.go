package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// Notifier sends reminders as private Telegram messages with inline buttons.
// Sends share one rate limiter and are attempted once.
type Notifier struct {
	bot     BotAPI
	limiter *rate.Limiter
	timeout time.Duration
}

// NewNotifier creates a Notifier allowing perSec messages per second.
// timeout bounds the wait for a rate-limiter slot; the HTTP call itself is
// bounded by the bot client's timeout.
func NewNotifier(bot BotAPI, perSec int, timeout time.Duration) *Notifier {
	if perSec <= 0 {
		perSec = 25
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSec), perSec),
		timeout: timeout,
	}
}

// Send delivers note. Any failure is reported as domain.ErrDeliveryFailed.
func (n *Notifier) Send(ctx context.Context, note domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", domain.ErrDeliveryFailed, err)
	}

	msg := tgbotapi.NewMessage(note.UserID, note.Text)
	if kb, ok := optionsKeyboard(note.Options); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	return nil
}
