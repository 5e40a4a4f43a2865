package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlowKind names a multi-step dialogue
type FlowKind string

const (
	FlowRecommend FlowKind = "recommend"
	FlowQuiz      FlowKind = "quiz"
)

// Step is the question a session is waiting on
type Step string

const (
	StepBooks        Step = "books"
	StepGenres       Step = "genres"
	StepAuthors      Step = "authors"
	StepFavoriteBook Step = "q1"
	StepBooksPerYear Step = "q2"
)

// Session is the per-user dialogue state between messages
type Session struct {
	Flow         FlowKind `json:"flow"`
	Step         Step     `json:"step"`
	Favorites    []string `json:"favorites,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	FavoriteBook string   `json:"favorite_book,omitempty"`
}

// SessionStore keeps at most one Session per user.
// Get returns a nil Session and no error when none is stored.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}

// DefaultSessionTTL applies when a store is created with a non-positive TTL
const DefaultSessionTTL = 30 * time.Minute

// MemoryStore is a process-local SessionStore
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]memoryEntry
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl of inactivity
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: make(map[int64]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.sessions, userID)
		return nil, nil
	}
	s := entry.session
	return &s, nil
}

func (m *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = memoryEntry{session: *s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// sessionKeyPrefix namespaces session keys in a shared Redis
const sessionKeyPrefix = "conversation:session:"

// RedisStore keeps sessions in Redis so several API replicas share dialogue state
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore; each Put refreshes the TTL
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// an unreadable session is dropped rather than wedging the user
		_ = r.client.Del(ctx, sessionKey(userID)).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
