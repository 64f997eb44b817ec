package memory

import (
	"errors"
	"sync"
	"time"

	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrStaleSession is returned when a session was reset after the caller read it
var ErrStaleSession = errors.New("session was reset")

// SessionRepository keeps chat sessions in process memory only.
// Every read and write goes through a clone so callers never share a transcript.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
	now   func() time.Time
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
		now:   time.Now,
	}
}

func (r *SessionRepository) Create(cfg store.SessionConfig) *store.Session {
	now := r.now()
	session := &store.Session{
		ID:         uuid.NewString(),
		Config:     cfg,
		Transcript: store.Transcript{},
		State:      store.StateIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	return session
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session).Clone(), true
	}
	return nil, false
}

// SaveTurn stores the result of a turn only if the session has not been reset
// since generation was read. Config changes made meanwhile are kept.
func (r *SessionRepository) SaveTurn(updated *store.Session, generation uint64) (*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(updated.ID)
	if !found {
		return nil, ragerr.ErrSessionNotFound
	}
	current := x.(*store.Session)
	if current.Generation != generation {
		return nil, ErrStaleSession
	}

	stored := updated.Clone()
	stored.Config = current.Config
	stored.Generation = current.Generation
	stored.UpdatedAt = r.now()
	r.cache.Set(stored.ID, stored, cache.DefaultExpiration)
	return stored.Clone(), nil
}

// UpdateConfig applies fn to the stored config without touching the transcript
func (r *SessionRepository) UpdateConfig(sessionID string, fn func(cfg *store.SessionConfig) error) (*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, ragerr.ErrSessionNotFound
	}
	session := x.(*store.Session).Clone()
	if err := fn(&session.Config); err != nil {
		return nil, err
	}
	session.UpdatedAt = r.now()
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session.Clone(), nil
}

// Reset empties the transcript of a session in one step, keeping its config
func (r *SessionRepository) Reset(sessionID string) (*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, ragerr.ErrSessionNotFound
	}
	session := x.(*store.Session).Clone()
	session.Reset(r.now())
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session.Clone(), nil
}

// Delete removes a session and reports whether it existed
func (r *SessionRepository) Delete(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.cache.Get(sessionID); !found {
		return false
	}
	r.cache.Delete(sessionID)
	return true
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
