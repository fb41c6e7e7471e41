package dashboard

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

var ErrSessionClosed = errors.New("session closed")

// Views is the result of one recompute cycle.
type Views struct {
	Generation uint64
	State      FilterState
	Unbrushed  models.DerivedView
	Brushed    models.DerivedView
}

func (v Views) Of(kind ViewKind) models.DerivedView {
	if kind == Brushed {
		return v.Brushed
	}
	return v.Unbrushed
}

// Session is the per-dashboard context: its own FilterState over a shared,
// read-only Dataset. Dispatch serializes transitions; a transition, its
// recompute and the binding notifications form one step.
type Session struct {
	ID string

	mu       sync.Mutex
	dataset  *models.Dataset
	state    FilterState
	bindings []Binding
	views    Views
	closed   bool
}

func NewSession(id string, ds *models.Dataset, t models.Thresholds, bindings ...Binding) (*Session, error) {
	st, err := NewFilterState(ds, t)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       id,
		dataset:  ds,
		state:    st,
		bindings: bindings,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(st); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Dataset() *models.Dataset {
	return s.dataset
}

// Dispatch applies ev atomically. A rejected event leaves state, views and
// bindings untouched.
func (s *Session) Dispatch(ev Event) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrSessionClosed
	}

	next := s.state.clone()
	res, err := ev.apply(&next, s.dataset)
	if err != nil {
		transitionsTotal.WithLabelValues(ev.Name(), "rejected").Inc()
		log.Printf("session %s: %s rejected: %v", s.ID, ev.Name(), err)
		return res, err
	}
	if err := s.commit(next); err != nil {
		transitionsTotal.WithLabelValues(ev.Name(), "failed").Inc()
		return res, fmt.Errorf("recompute after %s: %w", ev.Name(), err)
	}
	transitionsTotal.WithLabelValues(ev.Name(), "applied").Inc()
	if w := res.Warning(); w != nil {
		log.Printf("session %s: %s: %v", s.ID, ev.Name(), w)
	}
	return res, nil
}

// commit recomputes, stores the new state and views, then notifies bindings.
// Callers hold s.mu.
func (s *Session) commit(next FilterState) error {
	unbrushed, brushed, err := Recompute(s.dataset, next)
	if err != nil {
		return err
	}
	s.state = next
	s.views = Views{
		Generation: s.views.Generation + 1,
		State:      next,
		Unbrushed:  unbrushed,
		Brushed:    brushed,
	}
	for _, b := range s.bindings {
		s.notify(b)
	}
	return nil
}

func (s *Session) notify(b Binding) {
	snap := Snapshot{
		Generation: s.views.Generation,
		Kind:       b.Source(),
		View:       s.views.Of(b.Source()),
		State:      s.views.State,
	}
	if err := b.Update(snap); err != nil {
		log.Printf("session %s: binding %s: %v", s.ID, b.Name(), err)
	}
}

// Bind registers b and delivers the current views to it.
func (s *Session) Bind(b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.bindings = append(s.bindings, b)
	s.notify(b)
	return nil
}

// Bindings returns the registered bindings in notification order.
func (s *Session) Bindings() []Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Do runs fn with the current views while holding the session lock, so no
// transition can happen until fn returns. Bindings seen from fn hold the
// same generation as the views passed in.
func (s *Session) Do(fn func(Views) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return fn(s.views)
}

func (s *Session) Views() Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views
}

func (s *Session) State() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Close marks the session torn down. Later events fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.bindings = nil
	return nil
}
