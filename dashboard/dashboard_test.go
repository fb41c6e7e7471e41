package dashboard

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

func exampleDataset() *models.Dataset {
	return models.NewDataset([]models.Record{
		{ReadID: "r1", SampleName: "A", ReadLength: 400, MeanQuality: 10.0},
		{ReadID: "r2", SampleName: "A", ReadLength: 700, MeanQuality: 12.0},
		{ReadID: "r3", SampleName: "B", ReadLength: 1500, MeanQuality: 9.0},
	}, nil)
}

func newExampleSession(t *testing.T, bindings ...Binding) *Session {
	t.Helper()
	s, err := NewSession("test", exampleDataset(), models.Thresholds{Mid: 500, Long: 1000}, bindings...)
	require.NoError(t, err)
	return s
}

func buckets(v models.DerivedView) []models.BucketLabel {
	out := make([]models.BucketLabel, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Bucket
	}
	return out
}

func TestBucketize(t *testing.T) {
	th := models.Thresholds{Mid: 500, Long: 1000}
	labels, err := Bucketize([]int{0, 499, 500, 999, 1000, 50000}, th)
	require.NoError(t, err)
	assert.Equal(t, []models.BucketLabel{
		models.BucketShort, models.BucketShort,
		models.BucketMid, models.BucketMid,
		models.BucketLong, models.BucketLong,
	}, labels)
}

func TestBucketizeInvalidThresholds(t *testing.T) {
	for _, th := range []models.Thresholds{{Mid: 1000, Long: 1000}, {Mid: 2000, Long: 1000}} {
		labels, err := Bucketize([]int{1, 2, 3}, th)
		assert.ErrorIs(t, err, models.ErrInvalidThresholds)
		assert.Nil(t, labels)
	}
}

func TestBucketIntervalRule(t *testing.T) {
	th := models.Thresholds{Mid: 300, Long: 600}
	for length := 0; length < 1000; length += 7 {
		b := BucketOf(length, th)
		switch {
		case length < th.Mid:
			assert.Equal(t, models.BucketShort, b, length)
		case length < th.Long:
			assert.Equal(t, models.BucketMid, b, length)
		default:
			assert.Equal(t, models.BucketLong, b, length)
		}
	}
}

func TestSelectionThenThresholds(t *testing.T) {
	s := newExampleSession(t)

	_, err := s.Dispatch(SetSampleSelection{Samples: []string{"A"}})
	require.NoError(t, err)
	v := s.Views()
	assert.Equal(t, []string{"r1", "r2"}, v.Unbrushed.ReadIDs())
	assert.Equal(t, []models.BucketLabel{models.BucketShort, models.BucketMid}, buckets(v.Unbrushed))
	assert.Equal(t, v.Unbrushed, v.Brushed)

	_, err = s.Dispatch(SetThresholds{Thresholds: models.Thresholds{Mid: 300, Long: 600}})
	require.NoError(t, err)
	v = s.Views()
	assert.Equal(t, []string{"r1", "r2"}, v.Unbrushed.ReadIDs())
	assert.Equal(t, []models.BucketLabel{models.BucketMid, models.BucketLong}, buckets(v.Unbrushed))
	assert.Equal(t, []string{"A"}, v.State.SelectedSamples())
}

func TestReissuedSelectionClearsBrush(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 1000, YMin: 0, YMax: 20}})
	require.NoError(t, err)
	v := s.Views()
	assert.Equal(t, []string{"r1", "r2"}, v.Brushed.ReadIDs())

	res, err := s.Dispatch(SetSampleSelection{Samples: []string{"A", "B"}})
	require.NoError(t, err)
	assert.True(t, res.BrushCleared)

	v = s.Views()
	_, hasBrush := v.State.Brush()
	assert.False(t, hasBrush)
	assert.Equal(t, v.Unbrushed, v.Brushed)
	assert.Equal(t, []string{"r1", "r2", "r3"}, v.Brushed.ReadIDs())
}

func TestEverySelectionEventClearsBrush(t *testing.T) {
	events := []Event{
		SetSampleSelection{Samples: []string{"B"}},
		SetSampleSelection{Samples: nil},
		SetSampleSelection{Samples: []string{"A", "B"}},
		SelectAll{},
		DeselectAll{},
	}
	for _, ev := range events {
		t.Run(ev.Name(), func(t *testing.T) {
			s := newExampleSession(t)
			_, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 800, YMin: 0, YMax: 20}})
			require.NoError(t, err)
			_, err = s.Dispatch(ev)
			require.NoError(t, err)
			_, hasBrush := s.State().Brush()
			assert.False(t, hasBrush)
		})
	}
}

func TestDeselectAllYieldsEmptyViews(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(DeselectAll{})
	require.NoError(t, err)
	v := s.Views()
	assert.Equal(t, 0, v.Unbrushed.Len())
	assert.Equal(t, 0, v.Brushed.Len())
	assert.Empty(t, v.Unbrushed.Facets())

	_, err = s.Dispatch(SelectAll{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Views().Unbrushed.Len())
}

func TestUnknownSamplesDropped(t *testing.T) {
	s := newExampleSession(t)
	res, err := s.Dispatch(SetSampleSelection{Samples: []string{"A", "Z"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, res.Dropped)
	assert.ErrorIs(t, res.Warning(), ErrUnknownSample)
	assert.Equal(t, []string{"A"}, s.State().SelectedSamples())
}

func TestSelectionKeepsDatasetOrder(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(SetSampleSelection{Samples: []string{"B", "A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, s.State().SelectedSamples())
}

func TestInvalidThresholdsRejected(t *testing.T) {
	var calls int
	s := newExampleSession(t, FuncBinding{BindingName: "count", Fn: func(Snapshot) error {
		calls++
		return nil
	}})
	before := s.Views()

	_, err := s.Dispatch(SetThresholds{Thresholds: models.Thresholds{Mid: 1000, Long: 500}})
	assert.ErrorIs(t, err, models.ErrInvalidThresholds)

	after := s.Views()
	assert.Equal(t, models.Thresholds{Mid: 500, Long: 1000}, after.State.Thresholds())
	assert.Equal(t, before.Generation, after.Generation)
	assert.Equal(t, 1, calls)
}

func TestDegenerateBrushClears(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 600, YMin: 0, YMax: 20}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Views().Brushed.Len())

	res, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 600, XMax: 0, YMin: 0, YMax: 20}})
	require.NoError(t, err)
	assert.True(t, res.BrushCleared)
	v := s.Views()
	assert.Equal(t, v.Unbrushed, v.Brushed)
}

func TestBrushBoundsInclusive(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 400, XMax: 700, YMin: 10, YMax: 12}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, s.Views().Brushed.ReadIDs())
}

func TestBrushLeavesSelectionAndThresholds(t *testing.T) {
	s := newExampleSession(t)
	_, err := s.Dispatch(SetSampleSelection{Samples: []string{"A"}})
	require.NoError(t, err)
	_, err = s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 500, YMin: 0, YMax: 50}})
	require.NoError(t, err)
	st := s.State()
	assert.Equal(t, []string{"A"}, st.SelectedSamples())
	assert.Equal(t, models.Thresholds{Mid: 500, Long: 1000}, st.Thresholds())

	_, err = s.Dispatch(SetThresholds{Thresholds: models.Thresholds{Mid: 100, Long: 200}})
	require.NoError(t, err)
	b, ok := s.State().Brush()
	assert.True(t, ok)
	assert.Equal(t, 500.0, b.XMax)
}

func TestRecomputeIdempotentAndNarrowing(t *testing.T) {
	ds := exampleDataset()
	st, err := NewFilterState(ds, models.Thresholds{Mid: 500, Long: 1000})
	require.NoError(t, err)
	_, err = SetBrushRange{Range: &models.BrushRange{XMin: 500, XMax: 2000, YMin: 0, YMax: 20}}.apply(&st, ds)
	require.NoError(t, err)

	u1, b1, err := Recompute(ds, st)
	require.NoError(t, err)
	u2, b2, err := Recompute(ds, st)
	require.NoError(t, err)
	assert.Equal(t, u1, u2)
	assert.Equal(t, b1, b2)

	inUnbrushed := map[string]bool{}
	for _, id := range u1.ReadIDs() {
		inUnbrushed[id] = true
	}
	for _, id := range b1.ReadIDs() {
		assert.True(t, inUnbrushed[id], id)
	}
	assert.Equal(t, []string{"r2", "r3"}, b1.ReadIDs())
}

func TestBindingsSeeCompleteViews(t *testing.T) {
	var seen []Snapshot
	record := func(s Snapshot) error {
		seen = append(seen, s)
		return nil
	}
	s := newExampleSession(t,
		FuncBinding{BindingName: "overview", Kind: Unbrushed, Fn: record},
		FuncBinding{BindingName: "detail", Kind: Brushed, Fn: record},
	)
	require.Len(t, seen, 2)

	_, err := s.Dispatch(SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 450, YMin: 0, YMax: 20}})
	require.NoError(t, err)
	_, err = s.Dispatch(SetSampleSelection{Samples: []string{"A"}})
	require.NoError(t, err)

	require.Len(t, seen, 6)
	last := seen[4:]
	for _, snap := range last {
		assert.Equal(t, uint64(3), snap.Generation)
		_, hasBrush := snap.State.Brush()
		assert.False(t, hasBrush)
		assert.Equal(t, []string{"r1", "r2"}, snap.View.ReadIDs())
	}
	assert.Equal(t, Brushed, last[1].Kind)
}

func TestFacetsFollowThresholds(t *testing.T) {
	s := newExampleSession(t)
	assert.Equal(t, []models.BucketLabel{models.BucketShort, models.BucketMid, models.BucketLong}, s.Views().Unbrushed.Facets())

	_, err := s.Dispatch(SetThresholds{Thresholds: models.Thresholds{Mid: 100, Long: 200}})
	require.NoError(t, err)
	assert.Equal(t, []models.BucketLabel{models.BucketLong}, s.Views().Unbrushed.Facets())
}

func TestClosedSessionRejectsEvents(t *testing.T) {
	s := newExampleSession(t)
	require.NoError(t, s.Close())
	_, err := s.Dispatch(SelectAll{})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Close(), ErrSessionClosed)
}

func TestRegistrySessionsAreIndependent(t *testing.T) {
	r := NewRegistry(exampleDataset(), models.Thresholds{Mid: 500, Long: 1000}, nil)
	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())

	_, err = a.Dispatch(DeselectAll{})
	require.NoError(t, err)
	assert.Equal(t, 0, a.Views().Unbrushed.Len())
	assert.Equal(t, 3, b.Views().Unbrushed.Len())

	got, ok := r.Get(a.ID)
	assert.True(t, ok)
	assert.Same(t, a, got)

	require.NoError(t, r.Close(a.ID))
	_, ok = r.Get(a.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, r.Close(a.ID), ErrSessionClosed)
}

func checkViews(t *testing.T, v Views) {
	t.Helper()
	brush, hasBrush := v.State.Brush()
	for _, r := range v.Unbrushed.Rows {
		assert.True(t, v.State.IsSelected(r.SampleName), "row %s of unselected sample", r.ReadID)
		assert.Equal(t, BucketOf(r.ReadLength, v.State.Thresholds()), r.Bucket, "row %s", r.ReadID)
	}
	if !hasBrush {
		assert.Equal(t, v.Unbrushed.ReadIDs(), v.Brushed.ReadIDs())
		return
	}
	assert.LessOrEqual(t, v.Brushed.Len(), v.Unbrushed.Len())
	for _, r := range v.Brushed.Rows {
		assert.True(t, brush.Contains(r.Record), "row %s outside brush", r.ReadID)
	}
}

func TestConcurrentDispatchKeepsViewsConsistent(t *testing.T) {
	var notified []uint64
	s := newExampleSession(t, FuncBinding{BindingName: "generations", Kind: Brushed, Fn: func(snap Snapshot) error {
		// bindings run under the session lock
		notified = append(notified, snap.Generation)
		return nil
	}})

	events := []Event{
		SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 800, YMin: 0, YMax: 20}},
		SetSampleSelection{Samples: []string{"A"}},
		SetThresholds{Thresholds: models.Thresholds{Mid: 600, Long: 1200}},
		SelectAll{},
		SetBrushRange{Range: &models.BrushRange{XMin: 1000, XMax: 2000, YMin: 5, YMax: 10}},
		SetThresholds{Thresholds: models.Thresholds{Mid: 500, Long: 1000}},
		DeselectAll{},
		SetBrushRange{},
	}

	const workers, rounds = 8, 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var last uint64
			for i := 0; i < rounds; i++ {
				_, err := s.Dispatch(events[(w+i)%len(events)])
				assert.NoError(t, err)

				v := s.Views()
				assert.GreaterOrEqual(t, v.Generation, last, "worker %d went back in time", w)
				last = v.Generation
				checkViews(t, v)
			}
		}(w)
	}
	wg.Wait()

	require.Len(t, notified, 1+workers*rounds)
	for i, g := range notified {
		assert.Equal(t, uint64(i+1), g)
	}
	assert.Equal(t, uint64(1+workers*rounds), s.Views().Generation)
}

func TestBindClosedSession(t *testing.T) {
	s := newExampleSession(t)
	require.NoError(t, s.Close())

	called := false
	err := s.Bind(FuncBinding{BindingName: "late", Fn: func(Snapshot) error {
		called = true
		return nil
	}})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, called)
	assert.Empty(t, s.Bindings())
}

func TestBindDeliversCurrentViews(t *testing.T) {
	s := newExampleSession(t)
	var got Snapshot
	require.NoError(t, s.Bind(FuncBinding{BindingName: "late", Kind: Unbrushed, Fn: func(snap Snapshot) error {
		got = snap
		return nil
	}}))
	assert.Equal(t, uint64(1), got.Generation)
	assert.Equal(t, 3, got.View.Len())
	require.Len(t, s.Bindings(), 1)
	assert.Equal(t, "late", s.Bindings()[0].Name())
}

func TestDoHoldsTransitions(t *testing.T) {
	s := newExampleSession(t)
	done := make(chan struct{})

	err := s.Do(func(v Views) error {
		go func() {
			s.Dispatch(DeselectAll{})
			close(done)
		}()
		select {
		case <-done:
			return fmt.Errorf("dispatch ran inside Do")
		case <-time.After(50 * time.Millisecond):
		}
		assert.Equal(t, uint64(1), v.Generation)
		return nil
	})
	require.NoError(t, err)
	<-done
	assert.Equal(t, uint64(2), s.Views().Generation)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Do(func(Views) error { return nil }), ErrSessionClosed)
}

func TestRegistryBindsBeforePublishing(t *testing.T) {
	var created []*[]Snapshot
	r := NewRegistry(exampleDataset(), models.Thresholds{Mid: 500, Long: 1000}, func() []Binding {
		seen := &[]Snapshot{}
		created = append(created, seen)
		return []Binding{FuncBinding{BindingName: "overview", Kind: Unbrushed, Fn: func(snap Snapshot) error {
			*seen = append(*seen, snap)
			return nil
		}}}
	})
	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Len(t, a.Bindings(), 1)

	_, err = a.Dispatch(DeselectAll{})
	require.NoError(t, err)
	assert.Len(t, *created[0], 2)
	assert.Len(t, *created[1], 1, "bindings are not shared between sessions")
	assert.Equal(t, 3, b.Views().Unbrushed.Len())
}
