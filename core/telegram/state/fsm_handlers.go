package state

import (
	"github.com/m3rciful/kropbot/core/logger"
	tghelpers "github.com/m3rciful/kropbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

var fsmHandlers = map[Step]tele.HandlerFunc{}

// RegisterHandler associates a step with its free-text input handler.
func RegisterHandler(st Step, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	fsmHandlers[st] = h
}

// dispatch executes the handler registered for the user's current step.
func dispatch(m Manager, c tele.Context) error {
	userID := c.Sender().ID
	current := m.Step(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "state", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("step", string(current)),
	)

	if handler, ok := fsmHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
