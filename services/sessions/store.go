// Package sessions keeps conversation state server-side for transports whose
// clients cannot carry it, such as chat bots and the terminal.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"bookly/models"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned by Get when no session exists for the id.
var ErrNotFound = errors.New("sessions: no session")

// maxTranscript bounds the history kept per session.
const maxTranscript = 20

type Session struct {
	State      models.ConversationState   `json:"state"`
	Transcript []models.TranscriptMessage `json:"transcript,omitempty"`
}

// New returns the session of a first contact.
func New() Session {
	return Session{State: models.NewConversationState()}
}

// Record appends one exchange and trims the transcript to its newest entries.
func (s Session) Record(userText, botText string, at time.Time) Session {
	out := Session{State: s.State.Clone()}
	out.Transcript = append(append(out.Transcript, s.Transcript...),
		models.TranscriptMessage{Text: userText, Timestamp: at},
		models.TranscriptMessage{Text: botText, IsBot: true, Timestamp: at},
	)
	if n := len(out.Transcript); n > maxTranscript {
		out.Transcript = out.Transcript[n-maxTranscript:]
	}
	return out
}

type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, id string, s Session) error
	Clear(ctx context.Context, id string) error
}

// Load returns the stored session for id, or a fresh one.
func Load(ctx context.Context, store Store, id string) (Session, error) {
	s, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return New(), nil
	}
	return s, err
}

const sessionPrefix = "chat:session:"

// RedisStore keeps sessions as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, sess Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+id, b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}

// MemoryStore is an in-process Store for single-user transports and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, id string, s Session) error {
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
