package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ai-support-be/pkg/session"
)

// SessionRepository keeps session contexts in memory. Sessions idle for 24
// hours are garbage-collected by the hourly sweep; every Save resets the
// idle timer.
type SessionRepository struct {
	cache *gocache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: gocache.New(24*time.Hour, 1*time.Hour),
	}
}

var _ session.Repository = &SessionRepository{}

func (r *SessionRepository) Get(id string) (*session.Context, bool) {
	if v, found := r.cache.Get(id); found {
		return v.(*session.Context), true
	}
	return nil, false
}

func (r *SessionRepository) Save(id string, sess *session.Context) {
	r.cache.Set(id, sess, gocache.DefaultExpiration)
}

func (r *SessionRepository) Delete(id string) {
	r.cache.Delete(id)
}
