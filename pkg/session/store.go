package session

import (
	"log"
	"sync"

	"ai-support-be/pkg/catalog"
)

// Repository is the backing table for session contexts. The in-memory
// implementation expires idle sessions with a periodic sweep.
type Repository interface {
	Get(id string) (*Context, bool)
	Save(id string, sess *Context)
	Delete(id string)
}

// Store is the session-facing API. Creation is guarded so two concurrent
// first turns of the same conversation share one context; all later
// per-session mutation is serialized inside Context itself.
type Store struct {
	repo   Repository
	mu     sync.Mutex
	logger *log.Logger
}

func NewStore(repo Repository, logger *log.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// GetOrCreate returns the context for a session id, creating it on the
// first turn.
func (s *Store) GetOrCreate(id string) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.repo.Get(id); ok {
		return sess
	}
	sess := NewContext(id)
	s.repo.Save(id, sess)
	s.logger.Printf("[SESSION] Created context for session %s", id)
	return sess
}

// RecordExchange appends a completed turn and re-saves so the idle timer
// resets.
func (s *Store) RecordExchange(id, userText, botText, intent string, shown []catalog.Ref) {
	sess := s.GetOrCreate(id)
	sess.RecordExchange(userText, botText, intent, shown)
	s.repo.Save(id, sess)
}

// ResolveFollowUp resolves pronouns and short answers against the session.
// Returns nil when the session is unknown or the query stands on its own.
func (s *Store) ResolveFollowUp(id, rawQuery string) *FollowUp {
	sess, ok := s.repo.Get(id)
	if !ok {
		return nil
	}
	return sess.ResolveFollowUp(rawQuery)
}

// Expire drops a session early, e.g. after the customer closes the chat.
func (s *Store) Expire(id string) {
	s.repo.Delete(id)
}
