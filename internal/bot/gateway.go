package bot

import (
	"context"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kropbot/core/telegram/sender"
)

// Gateway abstracts the outbound Telegram surface the controller needs.
// Tests substitute a fake; production uses the telebot-backed implementation.
type Gateway interface {
	// Send delivers a new MarkdownV2 message and returns its message id.
	Send(chatID int64, text string, markup *tele.ReplyMarkup) (int, error)
	// Edit rewrites an existing message in place.
	Edit(chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error
	// Delete removes a message. Failures are non-fatal for callers.
	Delete(chatID int64, messageID int) error
	// Respond answers a callback query, optionally as a popup alert.
	Respond(callbackID, text string, alert bool) error
}

// TeleGateway sends through the bot instance, binding it lazily from the
// first handled update. Deletes go through the async dispatcher when one is
// wired since nothing waits on their outcome.
type TeleGateway struct {
	bot        atomic.Pointer[tele.Bot]
	dispatcher *sender.Dispatcher
}

// NewGateway builds the production gateway. dispatcher may be nil.
func NewGateway(dispatcher *sender.Dispatcher) *TeleGateway {
	return &TeleGateway{dispatcher: dispatcher}
}

// Bind wires the bot instance. Safe to call on every update.
func (g *TeleGateway) Bind(b *tele.Bot) {
	if b != nil {
		g.bot.Store(b)
	}
}

func (g *TeleGateway) Send(chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	b := g.bot.Load()
	if b == nil {
		return 0, tele.ErrNotFound
	}
	msg, err := b.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdownV2,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (g *TeleGateway) Edit(chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	b := g.bot.Load()
	if b == nil {
		return tele.ErrNotFound
	}
	ref := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	_, err := b.Edit(ref, text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdownV2,
		ReplyMarkup: markup,
	})
	return err
}

func (g *TeleGateway) Delete(chatID int64, messageID int) error {
	b := g.bot.Load()
	if b == nil {
		return tele.ErrNotFound
	}
	ref := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	run := func() error { return b.Delete(ref) }
	if g.dispatcher != nil {
		if err := g.dispatcher.Enqueue(context.Background(), "delete.message", "deleteMessage", run); err == nil {
			return nil
		}
	}
	return run()
}

func (g *TeleGateway) Respond(callbackID, text string, alert bool) error {
	b := g.bot.Load()
	if b == nil {
		return tele.ErrNotFound
	}
	return b.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}
