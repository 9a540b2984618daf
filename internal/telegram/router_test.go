package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
	"github.com/LiliaBekrar/VoteReminder/internal/reminder"
	"github.com/LiliaBekrar/VoteReminder/internal/store"
)

type fakeBot struct {
	mu        sync.Mutex
	messages  []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
	sendErr   error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.messages = append(b.messages, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		b.callbacks = append(b.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) lastText(t *testing.T) string {
	t.Helper()
	if len(b.messages) == 0 {
		t.Fatal("no message sent")
	}
	return b.messages[len(b.messages)-1].Text
}

func newTestRouter(t *testing.T) (*Router, *fakeBot, *reminder.Engine) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	now := time.Date(2025, time.May, 5, 10, 0, 0, 0, loc)
	engine := reminder.NewEngine(repo, zap.NewNop(), reminder.Options{
		Location: loc,
		Now:      func() time.Time { return now },
	})
	bot := &fakeBot{}
	return NewRouter(bot, zap.NewNop(), engine), bot, engine
}

func command(userID int64, text string) tgbotapi.Update {
	n := strings.IndexByte(text, ' ')
	if n < 0 {
		n = len(text)
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: userID},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}},
	}}
}

func callback(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID},
		Data: data,
	}}
}

func TestRouter_StartAndNext(t *testing.T) {
	ctx := context.Background()
	r, bot, engine := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/start 09:00"))
	if got := bot.lastText(t); !strings.Contains(got, "09:00") || !strings.Contains(got, "06/05 à 09:00:00") {
		t.Fatalf("unexpected start reply: %q", got)
	}
	if _, err := engine.GetNext(ctx, 1); err != nil {
		t.Fatalf("user not registered: %v", err)
	}

	r.HandleUpdate(ctx, command(1, "/next"))
	if got := bot.lastText(t); got != "Votre prochain rappel est prévu pour : 06/05 à 09:00:00." {
		t.Fatalf("unexpected next reply: %q", got)
	}
}

func TestRouter_StartNormalizesDailyTime(t *testing.T) {
	ctx := context.Background()
	r, bot, _ := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/start  7:05 "))
	want := "Vous avez été inscrit avec succès ! Votre rappel quotidien est fixé à 07:05.\n" +
		"Votre prochain rappel est prévu pour 06/05 à 07:05:00."
	if got := bot.lastText(t); got != want {
		t.Fatalf("unexpected start reply: %q", got)
	}
}

func TestRouter_StartValidation(t *testing.T) {
	ctx := context.Background()
	r, bot, _ := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/start"))
	if got := bot.lastText(t); got != startUsageText {
		t.Fatalf("want usage, got %q", got)
	}
	r.HandleUpdate(ctx, command(1, "/start 25:00"))
	if got := bot.lastText(t); got != domain.ErrInvalidTimeFormat.Error() {
		t.Fatalf("want invalid time text, got %q", got)
	}
}

func TestRouter_PostponeAndVote(t *testing.T) {
	ctx := context.Background()
	r, bot, _ := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/repousser 30m"))
	if got := bot.lastText(t); got != notRegisteredText {
		t.Fatalf("want not registered, got %q", got)
	}

	r.HandleUpdate(ctx, command(1, "/start 09:00"))
	r.HandleUpdate(ctx, command(1, "/repousser 30m"))
	if got := bot.lastText(t); got != "Votre rappel a été repoussé à : 05/05 à 10:30:00." {
		t.Fatalf("unexpected postpone reply: %q", got)
	}
	r.HandleUpdate(ctx, command(1, "/repousser soon"))
	if got := bot.lastText(t); got != domain.ErrInvalidDelayFormat.Error() {
		t.Fatalf("want invalid delay text, got %q", got)
	}

	r.HandleUpdate(ctx, command(1, "/voter"))
	if got := bot.lastText(t); !strings.Contains(got, "05/05 à 11:30:00") {
		t.Fatalf("unexpected vote reply: %q", got)
	}
}

func TestRouter_Stop(t *testing.T) {
	ctx := context.Background()
	r, bot, engine := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/stop"))
	if got := bot.lastText(t); got != stopNotRegistered {
		t.Fatalf("unexpected reply: %q", got)
	}

	r.HandleUpdate(ctx, command(1, "/start 09:00"))
	r.HandleUpdate(ctx, command(1, "/stop"))
	if got := bot.lastText(t); got != stoppedText {
		t.Fatalf("unexpected reply: %q", got)
	}
	if _, err := engine.GetNext(ctx, 1); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestRouter_HelpAndUnknown(t *testing.T) {
	ctx := context.Background()
	r, bot, _ := newTestRouter(t)

	r.HandleUpdate(ctx, command(1, "/aide"))
	if got := bot.lastText(t); got != helpText {
		t.Fatalf("unexpected help: %q", got)
	}
	r.HandleUpdate(ctx, command(1, "/help"))
	if got := bot.lastText(t); got != helpText {
		t.Fatalf("unexpected help: %q", got)
	}
	r.HandleUpdate(ctx, command(1, "/dance"))
	if got := bot.lastText(t); got != unknownCommandText {
		t.Fatalf("unexpected reply: %q", got)
	}

	before := len(bot.messages)
	r.HandleUpdate(ctx, tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hello",
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 1},
	}})
	if len(bot.messages) != before {
		t.Fatalf("plain text should be ignored")
	}
}

func TestRouter_ReminderButtons(t *testing.T) {
	ctx := context.Background()
	r, bot, engine := newTestRouter(t)

	r.HandleUpdate(ctx, callback(1, "ack"))
	if len(bot.callbacks) != 1 || bot.callbacks[0].Text != notRegisteredText {
		t.Fatalf("unexpected callback answers: %+v", bot.callbacks)
	}

	r.HandleUpdate(ctx, command(1, "/start 09:00"))

	r.HandleUpdate(ctx, callback(1, "ack"))
	if got := bot.callbacks[len(bot.callbacks)-1].Text; got != "✅ Prochain rappel à 05/05 à 11:30:00." {
		t.Fatalf("unexpected ack answer: %q", got)
	}

	r.HandleUpdate(ctx, callback(1, "snooze"))
	if got := bot.callbacks[len(bot.callbacks)-1].Text; got != "🔔 Prochain rappel à 05/05 à 11:30:00." {
		t.Fatalf("unexpected snooze answer: %q", got)
	}
	next, _ := engine.GetNext(ctx, 1)
	if next.Hour() != 11 || next.Minute() != 30 {
		t.Fatalf("snooze should use the 90m default window, got %v", next)
	}
}

func TestNotifier_Send(t *testing.T) {
	bot := &fakeBot{}
	n := NewNotifier(bot, 10, time.Second)

	err := n.Send(context.Background(), domain.Notification{
		UserID: 42,
		Text:   "Il est temps de voter !",
		Options: []domain.Option{
			{Label: "Voter", URL: "https://example.org/vote"},
			{Label: "J'ai voté", Action: domain.ActionAcknowledge},
			{Label: "Repousser", Action: domain.ActionSnooze},
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.messages) != 1 {
		t.Fatalf("want 1 message, got %d", len(bot.messages))
	}
	msg := bot.messages[0]
	if msg.ChatID != 42 {
		t.Fatalf("sent to %d", msg.ChatID)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 3 {
		t.Fatalf("unexpected keyboard: %#v", msg.ReplyMarkup)
	}
	row := kb.InlineKeyboard[0]
	if row[0].URL == nil || *row[0].URL != "https://example.org/vote" {
		t.Fatalf("first button should link to the vote page")
	}
	if row[1].CallbackData == nil || *row[1].CallbackData != "ack" {
		t.Fatalf("second button should carry ack")
	}
	if row[2].CallbackData == nil || *row[2].CallbackData != "snooze" {
		t.Fatalf("third button should carry snooze")
	}
}

func TestNotifier_SendFailure(t *testing.T) {
	bot := &fakeBot{sendErr: errors.New("Forbidden: bot was blocked by the user")}
	n := NewNotifier(bot, 10, time.Second)

	err := n.Send(context.Background(), domain.Notification{UserID: 1, Text: "x"})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("want ErrDeliveryFailed, got %v", err)
	}
}
