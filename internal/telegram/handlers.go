package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send reply failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

func (r *Router) formatTime(t time.Time) string {
	return t.In(r.engine.Location()).Format(dateTimeLayout)
}

// replyError answers with the user-facing text for err.
func (r *Router) replyError(chatID, userID int64, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		r.sendText(chatID, notRegisteredText)
	case errors.Is(err, domain.ErrInvalidTimeFormat), errors.Is(err, domain.ErrInvalidDelayFormat):
		r.sendText(chatID, err.Error())
	default:
		r.log.Error(op+" failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, genericFailureText)
	}
}

// --- Commands ---

func (r *Router) handleStart(ctx context.Context, chatID, userID int64, args string) {
	if args == "" {
		r.sendText(chatID, startUsageText)
		return
	}
	if _, err := r.engine.Register(ctx, userID, args); err != nil {
		r.replyError(chatID, userID, "register", err)
		return
	}
	rec, err := r.engine.Lookup(ctx, userID)
	if err != nil {
		r.replyError(chatID, userID, "register", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(registeredFmt, rec.Daily, r.formatTime(rec.NextTrigger)))
}

func (r *Router) handleNext(ctx context.Context, chatID, userID int64) {
	next, err := r.engine.GetNext(ctx, userID)
	if err != nil {
		r.replyError(chatID, userID, "get next", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(nextFmt, r.formatTime(next)))
}

func (r *Router) handleStop(ctx context.Context, chatID, userID int64) {
	err := r.engine.Unregister(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		r.sendText(chatID, stopNotRegistered)
	case err != nil:
		r.replyError(chatID, userID, "unregister", err)
	default:
		r.sendText(chatID, stoppedText)
	}
}

func (r *Router) handlePostpone(ctx context.Context, chatID, userID int64, args string) {
	if args == "" {
		r.sendText(chatID, postponeUsageText)
		return
	}
	next, err := r.engine.Postpone(ctx, userID, args)
	if err != nil {
		r.replyError(chatID, userID, "postpone", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(postponedFmt, r.formatTime(next)))
}

func (r *Router) handleVote(ctx context.Context, chatID, userID int64) {
	next, err := r.engine.Acknowledge(ctx, userID)
	if err != nil {
		r.replyError(chatID, userID, "acknowledge", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(votedFmt, r.formatTime(next)))
}

// --- Reminder buttons ---

func (r *Router) handleAckCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	next, err := r.engine.Acknowledge(ctx, cb.From.ID)
	r.answerAction(cb, "acknowledge", ackCallbackFmt, next, err)
}

func (r *Router) handleSnoozeCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	next, err := r.engine.Snooze(ctx, cb.From.ID)
	r.answerAction(cb, "snooze", snoozeCallbackFmt, next, err)
}

func (r *Router) answerAction(cb *tgbotapi.CallbackQuery, op, format string, next time.Time, err error) {
	text := fmt.Sprintf(format, r.formatTime(next))
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		text = notRegisteredText
	case err != nil:
		r.log.Error(op+" failed", zap.Error(err), zap.Int64("userID", cb.From.ID))
		text = genericFailureText
	}
	if err := r.answerCallback(cb.ID, text); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err), zap.Int64("userID", cb.From.ID))
	}
}
