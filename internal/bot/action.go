package bot

import (
	"github.com/m3rciful/kropbot/internal/board"
)

// ActionType enumerates everything a user can do to the bot: press an inline
// button, send free text, or issue /start.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionStart
	ActionAddListing
	ActionViewBoard
	ActionMyListings
	ActionHelp
	ActionPickKind
	ActionPickCategory
	ActionViewKind
	ActionViewCategory
	ActionPage
	ActionMyPage
	ActionEdit
	ActionDelete
	ActionConfirm
	ActionCancel
	ActionSkip
	ActionHome
	ActionBack
	ActionNoop
	ActionText
)

// Action is a decoded user intent. Int carries the numeric payload where the
// action has one (category index, page offset, listing id); Kind carries the
// listing kind for kind selection actions.
type Action struct {
	Type ActionType
	Int  int64
	Kind board.Kind
}

// Event is one incoming update, decoded at the transport boundary so the
// dialogue controller never touches Telegram types directly.
type Event struct {
	ChatID      int64
	UserID      int64
	UserDisplay string
	// CallbackID is set for button presses and empty for text input.
	CallbackID string
	// MessageID is the incoming message id for text input events.
	MessageID int
	Action    Action
	Text      string

	acked bool
}

// FromCallback reports whether the event originated from an inline button.
func (e *Event) FromCallback() bool { return e.CallbackID != "" }
