package bot

import (
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kropbot/core/logger"
	"github.com/m3rciful/kropbot/core/telegram/state"
)

// Presenter maintains the single live interface message per chat: it edits
// the message in place when one exists and sends a fresh one otherwise.
// It is the only writer of the session's LiveMessageID.
type Presenter struct {
	gw       Gateway
	sessions state.Manager
}

// NewPresenter builds a presenter over the gateway and session manager.
func NewPresenter(gw Gateway, sessions state.Manager) *Presenter {
	return &Presenter{gw: gw, sessions: sessions}
}

// Show renders the screen. An edit that reports unchanged content counts as
// success; any other edit failure falls back to sending a new message, since
// the old one may be too stale to edit or already gone.
func (p *Presenter) Show(userID, chatID int64, text string, markup *tele.ReplyMarkup) error {
	if live, ok := p.sessions.LiveMessage(userID); ok {
		err := p.gw.Edit(chatID, live, text, markup)
		if err == nil || errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		logger.TG.Warn("live message edit failed, sending new",
			slog.String("event", "render.fallback"),
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", live),
			slog.String("err", err.Error()),
		)
	}
	id, err := p.gw.Send(chatID, text, markup)
	if err != nil {
		// Nothing sensible to do in-flow; the next update retries anyway.
		logger.TG.Error("interface send failed",
			slog.String("event", "render.send_failed"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return nil
	}
	p.sessions.SetLiveMessage(userID, id)
	return nil
}

// Discard deletes the live message and forgets it, so the next Show starts a
// fresh one at the bottom of the chat.
func (p *Presenter) Discard(userID, chatID int64) {
	if live, ok := p.sessions.LiveMessage(userID); ok {
		_ = p.gw.Delete(chatID, live)
		p.sessions.ClearLiveMessage(userID)
	}
}
