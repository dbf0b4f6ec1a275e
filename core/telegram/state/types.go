package state

import tele "gopkg.in/telebot.v4"

// Step identifies a finite-state-machine step used in conversations.
type Step string

// StepNone indicates there is no recorded dialogue step for the user.
const StepNone Step = ""

// Session stores conversation state for a single user: the current dialogue
// step, accumulated key/value data (draft fields, view context), and the id
// of the live interface message. LiveMessageID is written only by the
// interface renderer; everything else belongs to the dialogue controller.
type Session struct {
	Step          Step              `json:"step"`
	LiveMessageID int               `json:"live_message_id,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
}

// Manager orchestrates user sessions and FSM step transitions.
type Manager interface {
	Step(userID int64) Step
	SetStep(userID int64, st Step)
	HasStep(userID int64) bool

	// Live interface message bookkeeping. Mutation rights are restricted
	// to the interface renderer.
	LiveMessage(userID int64) (int, bool)
	SetLiveMessage(userID int64, messageID int)
	ClearLiveMessage(userID int64)

	Value(userID int64, key string) (string, bool)
	SetValue(userID int64, key, value string)
	Int(userID int64, key string) (int64, bool)
	SetInt(userID int64, key string, value int64)
	ClearValue(userID int64, key string)

	// Reset drops the step and accumulated data but keeps the live
	// message id so the interface can still be edited in place.
	Reset(userID int64)
	// Clear removes the session entirely.
	Clear(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
