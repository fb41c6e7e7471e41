package main

import (
	"sync"

	"github.com/pivolan/readstats_dashboard/dashboard"
	"github.com/pivolan/readstats_dashboard/domain/models"
	"github.com/pivolan/readstats_dashboard/export"
	"github.com/pivolan/readstats_dashboard/plot"
)

type drawFunc func(view models.DerivedView, samples []string, colors map[string]string, brush *models.BrushRange) ([]byte, error)

// plotBinding keeps the latest snapshot of its view and renders the PNG on
// demand, at most once per generation.
type plotBinding struct {
	name string
	// suffix is set for plots written by the plot export
	suffix string
	kind   dashboard.ViewKind
	draw   drawFunc
	colors map[string]string

	mu       sync.Mutex
	snap     dashboard.Snapshot
	png      []byte
	rendered uint64
}

func (b *plotBinding) Name() string               { return b.name }
func (b *plotBinding) Source() dashboard.ViewKind { return b.kind }
func (b *plotBinding) Suffix() string             { return b.suffix }

func (b *plotBinding) Update(s dashboard.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s
	b.png = nil
	return nil
}

func (b *plotBinding) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap.Generation
}

func (b *plotBinding) PNG() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.png != nil && b.rendered == b.snap.Generation {
		return b.png, nil
	}
	png, err := b.draw(b.snap.View, b.snap.State.SelectedSamples(), b.colors, brushOf(b.snap.State))
	if err != nil {
		return nil, err
	}
	b.png, b.rendered = png, b.snap.Generation
	return png, nil
}

// tableBinding holds the rows of one data table.
type tableBinding struct {
	name string
	kind dashboard.ViewKind

	mu   sync.Mutex
	snap dashboard.Snapshot
}

func (b *tableBinding) Name() string               { return b.name }
func (b *tableBinding) Source() dashboard.ViewKind { return b.kind }

func (b *tableBinding) Update(s dashboard.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s
	return nil
}

func (b *tableBinding) Rows(q dashboard.TableQuery) []models.LabeledRecord {
	b.mu.Lock()
	view := b.snap.View
	b.mu.Unlock()
	return dashboard.ApplyTableQuery(view, q)
}

func (b *tableBinding) HTML(q dashboard.TableQuery) string {
	return RenderRecordsHTML(b.Rows(q), tableRowLimit, b.name)
}

// sessionView is the set of widgets of one dashboard session.
type sessionView struct {
	plots    []*plotBinding
	overview *tableBinding
	detail   *tableBinding
}

func viewOnly(draw func(models.DerivedView) ([]byte, error)) drawFunc {
	return func(view models.DerivedView, _ []string, _ map[string]string, _ *models.BrushRange) ([]byte, error) {
		return draw(view)
	}
}

func newSessionView(colors map[string]string) *sessionView {
	return &sessionView{
		plots: []*plotBinding{
			{
				name:   "scatter-plot-read-length-qscore",
				suffix: export.SuffixScatter,
				kind:   dashboard.Brushed,
				draw:   plot.DrawScatter,
				colors: colors,
			},
			{
				name:   "violin-plot-qscore-read-length",
				suffix: export.SuffixQScoreViolin,
				kind:   dashboard.Unbrushed,
				draw: func(view models.DerivedView, samples []string, colors map[string]string, _ *models.BrushRange) ([]byte, error) {
					return plot.DrawQualityViolin(view, samples, colors)
				},
				colors: colors,
			},
			{
				name:   "violin-plot-read-length",
				suffix: export.SuffixLengthViolin,
				kind:   dashboard.Unbrushed,
				draw: func(view models.DerivedView, samples []string, colors map[string]string, _ *models.BrushRange) ([]byte, error) {
					return plot.DrawLengthViolin(view, samples, colors)
				},
				colors: colors,
			},
			{name: "histogram-read-length", kind: dashboard.Brushed, draw: viewOnly(plot.DrawLengthHistogram)},
			{name: "histogram-qscore", kind: dashboard.Brushed, draw: viewOnly(plot.DrawQualityHistogram)},
			{name: "bucket-counts", kind: dashboard.Unbrushed, draw: viewOnly(plot.DrawBucketCounts)},
		},
		overview: &tableBinding{name: "overview-table", kind: dashboard.Unbrushed},
		detail:   &tableBinding{name: "detail-table", kind: dashboard.Brushed},
	}
}

// sessionViewOf collects the widgets bound to sess.
func sessionViewOf(sess *dashboard.Session) (*sessionView, bool) {
	v := &sessionView{}
	for _, b := range sess.Bindings() {
		switch b := b.(type) {
		case *plotBinding:
			v.plots = append(v.plots, b)
		case *tableBinding:
			if b.kind == dashboard.Brushed {
				v.detail = b
			} else {
				v.overview = b
			}
		}
	}
	return v, v.overview != nil && v.detail != nil
}

func (v *sessionView) bindings() []dashboard.Binding {
	out := make([]dashboard.Binding, 0, len(v.plots)+2)
	for _, p := range v.plots {
		out = append(out, p)
	}
	return append(out, v.overview, v.detail)
}

// artifacts are the exportable plots in display order.
func (v *sessionView) artifacts() []export.Artifact {
	var out []export.Artifact
	for _, p := range v.plots {
		if p.suffix != "" {
			out = append(out, p)
		}
	}
	return out
}

func (v *sessionView) plot(name string) (*plotBinding, bool) {
	for _, p := range v.plots {
		if p.name == name || (p.suffix != "" && p.suffix == name) {
			return p, true
		}
	}
	return nil, false
}

func brushOf(st dashboard.FilterState) *models.BrushRange {
	if b, ok := st.Brush(); ok {
		return &b
	}
	return nil
}
