package dashboard

import (
	"errors"
	"fmt"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// ErrUnknownSample marks selection entries that are not in the dataset.
// They are dropped, the transition still succeeds.
var ErrUnknownSample = errors.New("unknown sample")

// Event is one of the five transitions of a FilterState.
// The set is closed: apply is unexported.
type Event interface {
	Name() string
	apply(st *FilterState, ds *models.Dataset) (Result, error)
}

// Result describes what a transition did besides replacing its own field.
type Result struct {
	Dropped      []string
	BrushCleared bool
}

// Warning returns the dropped samples as an error wrapping ErrUnknownSample, or nil.
func (r Result) Warning() error {
	if len(r.Dropped) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownSample, r.Dropped)
}

// SetSampleSelection replaces the selection and clears the brush, even when
// the new selection equals the current one.
type SetSampleSelection struct {
	Samples []string
}

func (SetSampleSelection) Name() string { return "set_sample_selection" }

func (e SetSampleSelection) apply(st *FilterState, ds *models.Dataset) (Result, error) {
	hadBrush := st.brush != nil
	dropped := st.setSelection(ds, e.Samples)
	return Result{Dropped: dropped, BrushCleared: hadBrush}, nil
}

// SetBrushRange replaces the brush only. A nil or degenerate range clears it.
type SetBrushRange struct {
	Range *models.BrushRange
}

func (SetBrushRange) Name() string { return "set_brush_range" }

func (e SetBrushRange) apply(st *FilterState, _ *models.Dataset) (Result, error) {
	if e.Range == nil || e.Range.Degenerate() {
		hadBrush := st.brush != nil
		st.brush = nil
		return Result{BrushCleared: hadBrush}, nil
	}
	b := *e.Range
	st.brush = &b
	return Result{}, nil
}

type SelectAll struct{}

func (SelectAll) Name() string { return "select_all" }

func (SelectAll) apply(st *FilterState, ds *models.Dataset) (Result, error) {
	return SetSampleSelection{Samples: ds.Samples}.apply(st, ds)
}

type DeselectAll struct{}

func (DeselectAll) Name() string { return "deselect_all" }

func (DeselectAll) apply(st *FilterState, ds *models.Dataset) (Result, error) {
	return SetSampleSelection{Samples: nil}.apply(st, ds)
}

// SetThresholds relabels buckets. Selection and brush are untouched.
type SetThresholds struct {
	Thresholds models.Thresholds
}

func (SetThresholds) Name() string { return "set_thresholds" }

func (e SetThresholds) apply(st *FilterState, _ *models.Dataset) (Result, error) {
	if err := e.Thresholds.Validate(); err != nil {
		return Result{}, err
	}
	st.thresholds = e.Thresholds
	return Result{}, nil
}
