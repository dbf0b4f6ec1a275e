package state

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/kropbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const redisOpTimeout = 3 * time.Second

type redisManager struct {
	client *redis.Client
	ttl    time.Duration
	locks  sync.Map // userID -> *sync.Mutex
}

// NewRedisManager constructs a Manager backed by redis. Sessions are stored
// as JSON under "session:<userID>" and expire after ttl of inactivity.
func NewRedisManager(ctx context.Context, addr, password string, db int, ttl time.Duration) (Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &redisManager{client: client, ttl: ttl}, nil
}

func (m *redisManager) lock(userID int64) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func sessionKeyFor(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

func (m *redisManager) load(ctx context.Context, userID int64) *Session {
	data, err := m.client.Get(ctx, sessionKeyFor(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{Data: make(map[string]string)}
	}
	if err != nil {
		logger.STATE.Warn("session load failed",
			slog.String("event", "session.load"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return &Session{Data: make(map[string]string)}
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.STATE.Warn("session decode failed",
			slog.String("event", "session.load"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return &Session{Data: make(map[string]string)}
	}
	if session.Data == nil {
		session.Data = make(map[string]string)
	}
	return &session
}

func (m *redisManager) save(ctx context.Context, userID int64, session *Session) {
	data, err := json.Marshal(session)
	if err != nil {
		logger.STATE.Error("session encode failed",
			slog.String("event", "session.save"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := m.client.Set(ctx, sessionKeyFor(userID), data, m.ttl).Err(); err != nil {
		logger.STATE.Error("session save failed",
			slog.String("event", "session.save"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// mutate applies fn to the user's session under the per-user lock and persists the result.
func (m *redisManager) mutate(userID int64, fn func(*Session)) {
	mu := m.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	session := m.load(ctx, userID)
	fn(session)
	m.save(ctx, userID, session)
}

func (m *redisManager) read(userID int64) *Session {
	mu := m.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return m.load(ctx, userID)
}

func (m *redisManager) Step(userID int64) Step {
	return m.read(userID).Step
}

func (m *redisManager) SetStep(userID int64, st Step) {
	m.mutate(userID, func(s *Session) { s.Step = st })
}

func (m *redisManager) HasStep(userID int64) bool {
	return m.Step(userID) != StepNone
}

func (m *redisManager) LiveMessage(userID int64) (int, bool) {
	id := m.read(userID).LiveMessageID
	return id, id != 0
}

func (m *redisManager) SetLiveMessage(userID int64, messageID int) {
	m.mutate(userID, func(s *Session) { s.LiveMessageID = messageID })
}

func (m *redisManager) ClearLiveMessage(userID int64) {
	m.mutate(userID, func(s *Session) { s.LiveMessageID = 0 })
}

func (m *redisManager) Value(userID int64, key string) (string, bool) {
	val, ok := m.read(userID).Data[key]
	return val, ok
}

func (m *redisManager) SetValue(userID int64, key, value string) {
	m.mutate(userID, func(s *Session) { s.Data[key] = value })
}

func (m *redisManager) Int(userID int64, key string) (int64, bool) {
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

func (m *redisManager) SetInt(userID int64, key string, value int64) {
	m.SetValue(userID, key, strconv.FormatInt(value, 10))
}

func (m *redisManager) ClearValue(userID int64, key string) {
	m.mutate(userID, func(s *Session) { delete(s.Data, key) })
}

func (m *redisManager) Reset(userID int64) {
	m.mutate(userID, func(s *Session) {
		s.Step = StepNone
		s.Data = make(map[string]string)
	})
}

func (m *redisManager) Clear(userID int64) {
	mu := m.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := m.client.Del(ctx, sessionKeyFor(userID)).Err(); err != nil {
		logger.STATE.Warn("session delete failed",
			slog.String("event", "session.clear"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (m *redisManager) InProgress(userID int64) bool {
	return m.HasStep(userID)
}

func (m *redisManager) ManagerHandler(c tele.Context) error {
	return dispatch(m, c)
}
