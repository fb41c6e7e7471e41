package dashboard

import (
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// Registry owns the live sessions of a server. All sessions share one dataset.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	dataset     *models.Dataset
	thresholds  models.Thresholds
	newBindings func() []Binding
}

// NewRegistry builds a registry. newBindings may be nil; it is called once
// per session so that bindings are never shared between sessions.
func NewRegistry(ds *models.Dataset, t models.Thresholds, newBindings func() []Binding) *Registry {
	return &Registry{
		sessions:    map[string]*Session{},
		dataset:     ds,
		thresholds:  t,
		newBindings: newBindings,
	}
}

func (r *Registry) Create() (*Session, error) {
	var bindings []Binding
	if r.newBindings != nil {
		bindings = r.newBindings()
	}
	s, err := NewSession(uuid.NewV4().String(), r.dataset, r.thresholds, bindings...)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	activeSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close tears a session down and forgets it.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	activeSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	if !ok {
		return ErrSessionClosed
	}
	return s.Close()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
