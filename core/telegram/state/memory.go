package state

import (
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryManager constructs an in-memory Manager implementation.
// Sessions live for the process lifetime; there is no idle expiry.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
	}
}

func (m *memoryManager) session(userID int64) *Session {
	session, ok := m.sessions[userID]
	if !ok {
		session = &Session{Data: make(map[string]string)}
		m.sessions[userID] = session
	}
	return session
}

// Step returns the current dialogue step of a user, or StepNone if no session exists.
func (m *memoryManager) Step(userID int64) Step {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[userID]; ok {
		return session.Step
	}
	return StepNone
}

// SetStep updates the dialogue step for a user, creating the session if necessary.
func (m *memoryManager) SetStep(userID int64, st Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).Step = st
}

// HasStep reports whether the user has a recorded dialogue step.
func (m *memoryManager) HasStep(userID int64) bool {
	return m.Step(userID) != StepNone
}

// LiveMessage returns the id of the user's live interface message, if any.
func (m *memoryManager) LiveMessage(userID int64) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[userID]; ok && session.LiveMessageID != 0 {
		return session.LiveMessageID, true
	}
	return 0, false
}

// SetLiveMessage records the id of the user's live interface message.
func (m *memoryManager) SetLiveMessage(userID int64, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).LiveMessageID = messageID
}

// ClearLiveMessage forgets the live interface message id.
func (m *memoryManager) ClearLiveMessage(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[userID]; ok {
		session.LiveMessageID = 0
	}
}

// Value retrieves a session value by key.
func (m *memoryManager) Value(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[userID]
	if !ok {
		return "", false
	}
	val, ok := session.Data[key]
	return val, ok
}

// SetValue stores a session key/value pair.
func (m *memoryManager) SetValue(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.session(userID)
	if session.Data == nil {
		session.Data = make(map[string]string)
	}
	session.Data[key] = value
}

// Int retrieves a session value by key and parses it as int64.
func (m *memoryManager) Int(userID int64, key string) (int64, bool) {
	val, found := m.Value(userID, key)
	if !found {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetInt stores an integer session value.
func (m *memoryManager) SetInt(userID int64, key string, value int64) {
	m.SetValue(userID, key, strconv.FormatInt(value, 10))
}

// ClearValue removes a session key/value pair.
func (m *memoryManager) ClearValue(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[userID]; ok {
		delete(session.Data, key)
	}
}

// Reset drops the step and data but keeps the live message id.
func (m *memoryManager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[userID]; ok {
		session.Step = StepNone
		session.Data = make(map[string]string)
	}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active dialogue step.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasStep(userID)
}

// ManagerHandler executes the handler function registered for the user's current step, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	return dispatch(m, c)
}
