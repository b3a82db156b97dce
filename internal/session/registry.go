package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/usecase"
	"github.com/google/uuid"
)

// Registry хранит открытые формы по id сессии. Число форм ограничено
// maxSessions, лишняя вытесняет самую давно не использованную.
type Registry struct {
	mu          sync.Mutex
	forms       map[string]*Form
	deps        FormDeps
	maxSessions int
}

// NewRegistry с maxSessions <= 0 не ограничивает число форм
func NewRegistry(deps FormDeps, maxSessions int) *Registry {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.IDs == nil {
		deps.IDs = usecase.NewTicketIDGenerator(nil)
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Registry{
		forms:       make(map[string]*Form),
		deps:        deps,
		maxSessions: maxSessions,
	}
}

// Create - новая страница с чистым состоянием
func (r *Registry) Create() *Form {
	form := NewForm(uuid.NewString(), r.deps)

	r.mu.Lock()
	evicted := 0
	for r.maxSessions > 0 && len(r.forms) >= r.maxSessions {
		r.evictOldestLocked()
		evicted++
	}
	r.forms[form.ID] = form
	n := len(r.forms)
	r.mu.Unlock()

	for range evicted {
		r.deps.Metrics.SessionEvicted()
	}
	if evicted > 0 {
		r.deps.Log.Warn("session_evicted", slog.Int("count", evicted), slog.Int("max_sessions", r.maxSessions))
	}
	r.deps.Metrics.SetActiveSessions(n)
	return form
}

func (r *Registry) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, form := range r.forms {
		seen := form.idleSince()
		if oldestID == "" || seen.Before(oldestAt) {
			oldestID, oldestAt = id, seen
		}
	}
	delete(r.forms, oldestID)
}

func (r *Registry) Get(id string) (*Form, error) {
	r.mu.Lock()
	form, ok := r.forms[id]
	r.mu.Unlock()

	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	form.touch(r.deps.Clock.Now())
	return form, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep удаляет формы, к которым не обращались дольше maxIdle.
// Возвращает число удаленных.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.deps.Clock.Now().Add(-maxIdle)

	r.mu.Lock()
	removed := 0
	for id, form := range r.forms {
		if form.idleSince().Before(cutoff) {
			delete(r.forms, id)
			removed++
		}
	}
	n := len(r.forms)
	r.mu.Unlock()

	r.deps.Metrics.SetActiveSessions(n)
	return removed
}
