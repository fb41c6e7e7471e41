package dashboard

import "github.com/pivolan/readstats_dashboard/domain/models"

type ViewKind int

const (
	Unbrushed ViewKind = iota
	Brushed
)

func (k ViewKind) String() string {
	if k == Brushed {
		return "brushed"
	}
	return "unbrushed"
}

// Snapshot is what a binding receives: one fully materialized view plus
// the state it was derived from.
type Snapshot struct {
	Generation uint64
	Kind       ViewKind
	View       models.DerivedView
	State      FilterState
}

// Binding observes one derived view and re-renders when it changes.
// Update is called once per recompute, after both views are complete.
type Binding interface {
	Name() string
	Source() ViewKind
	Update(Snapshot) error
}

// FuncBinding adapts a function to a Binding.
type FuncBinding struct {
	BindingName string
	Kind        ViewKind
	Fn          func(Snapshot) error
}

func (b FuncBinding) Name() string     { return b.BindingName }
func (b FuncBinding) Source() ViewKind { return b.Kind }
func (b FuncBinding) Update(s Snapshot) error {
	if b.Fn == nil {
		return nil
	}
	return b.Fn(s)
}
