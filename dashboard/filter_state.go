package dashboard

import (
	"github.com/pivolan/readstats_dashboard/domain/models"
)

// FilterState holds every independent filter source of a session.
// It is only changed through Event values applied by Session.Dispatch.
type FilterState struct {
	selected   []string
	selectedIn map[string]struct{}
	brush      *models.BrushRange
	thresholds models.Thresholds
}

// NewFilterState selects all samples, sets no brush and uses t.
func NewFilterState(ds *models.Dataset, t models.Thresholds) (FilterState, error) {
	if err := t.Validate(); err != nil {
		return FilterState{}, err
	}
	st := FilterState{thresholds: t}
	st.setSelection(ds, ds.Samples)
	return st, nil
}

func (s FilterState) SelectedSamples() []string {
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s FilterState) IsSelected(sample string) bool {
	_, ok := s.selectedIn[sample]
	return ok
}

func (s FilterState) Brush() (models.BrushRange, bool) {
	if s.brush == nil {
		return models.BrushRange{}, false
	}
	return *s.brush, true
}

func (s FilterState) Thresholds() models.Thresholds {
	return s.thresholds
}

func (s FilterState) clone() FilterState {
	c := FilterState{
		selected:   s.SelectedSamples(),
		selectedIn: make(map[string]struct{}, len(s.selectedIn)),
		thresholds: s.thresholds,
	}
	for k := range s.selectedIn {
		c.selectedIn[k] = struct{}{}
	}
	if s.brush != nil {
		b := *s.brush
		c.brush = &b
	}
	return c
}

// setSelection replaces the selection, keeps dataset order, drops unknown
// names and always clears the brush. It returns the dropped names.
func (s *FilterState) setSelection(ds *models.Dataset, names []string) []string {
	wanted := make(map[string]struct{}, len(names))
	var dropped []string
	for _, n := range names {
		if !ds.HasSample(n) {
			dropped = append(dropped, n)
			continue
		}
		wanted[n] = struct{}{}
	}

	s.selected = make([]string, 0, len(wanted))
	s.selectedIn = make(map[string]struct{}, len(wanted))
	for _, sample := range ds.Samples {
		if _, ok := wanted[sample]; ok {
			s.selected = append(s.selected, sample)
			s.selectedIn[sample] = struct{}{}
		}
	}
	s.brush = nil
	return dropped
}
