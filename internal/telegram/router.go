package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
	"github.com/LiliaBekrar/VoteReminder/internal/reminder"
)

// BotAPI is the subset of *tgbotapi.BotAPI the router and notifier use.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Router maps Telegram updates to engine operations.
// Users are identified by their Telegram user id; replies go to the chat the
// command came from, reminders are sent privately.
type Router struct {
	bot    BotAPI
	log    *zap.Logger
	engine *reminder.Engine
}

// NewRouter creates a new Telegram router.
func NewRouter(bot BotAPI, log *zap.Logger, engine *reminder.Engine) *Router {
	return &Router{bot: bot, log: log, engine: engine}
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if msg := upd.Message; msg != nil {
		if !msg.IsCommand() || msg.From == nil {
			return
		}
		chatID := msg.Chat.ID
		userID := msg.From.ID
		args := strings.TrimSpace(msg.CommandArguments())

		switch msg.Command() {
		case "start":
			r.handleStart(ctx, chatID, userID, args)
		case "next":
			r.handleNext(ctx, chatID, userID)
		case "stop":
			r.handleStop(ctx, chatID, userID)
		case "repousser":
			r.handlePostpone(ctx, chatID, userID, args)
		case "voter":
			r.handleVote(ctx, chatID, userID)
		case "aide", "help":
			r.sendText(chatID, helpText)
		default:
			r.sendText(chatID, unknownCommandText)
		}
		return
	}

	// Reminder buttons. The callback carries only the action; the user is
	// whoever pressed it.
	if cb := upd.CallbackQuery; cb != nil && cb.From != nil {
		switch domain.Action(cb.Data) {
		case domain.ActionAcknowledge:
			r.handleAckCallback(ctx, cb)
		case domain.ActionSnooze:
			r.handleSnoozeCallback(ctx, cb)
		default:
			// Stale or foreign button.
			_ = r.answerCallback(cb.ID, "")
		}
	}
}
