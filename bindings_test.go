package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/readstats_dashboard/dashboard"
	"github.com/pivolan/readstats_dashboard/domain/models"
	"github.com/pivolan/readstats_dashboard/plot"
)

func TestPlotBindingRendersOncePerGeneration(t *testing.T) {
	calls := 0
	var gotBrush *models.BrushRange
	b := &plotBinding{
		name:   "test",
		suffix: "test_plot",
		kind:   dashboard.Brushed,
		draw: func(view models.DerivedView, samples []string, colors map[string]string, brush *models.BrushRange) ([]byte, error) {
			calls++
			gotBrush = brush
			return []byte{byte(view.Len())}, nil
		},
	}

	sess, err := dashboard.NewSession("s", testDataset(), models.Thresholds{Mid: 500, Long: 1000}, b)
	require.NoError(t, err)

	png, err := b.PNG()
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, png)
	_, err = b.PNG()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = sess.Dispatch(dashboard.SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 500, YMin: 0, YMax: 20}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), b.Generation())

	png, err = b.PNG()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, png)
	require.NotNil(t, gotBrush)
	assert.Equal(t, 500.0, gotBrush.XMax)
	assert.Equal(t, 2, calls)
}

func TestPlotBindingErrorNotCached(t *testing.T) {
	fail := true
	b := &plotBinding{draw: func(models.DerivedView, []string, map[string]string, *models.BrushRange) ([]byte, error) {
		if fail {
			return nil, plot.ErrNothingToDraw
		}
		return []byte("ok"), nil
	}}
	_, err := b.PNG()
	assert.True(t, errors.Is(err, plot.ErrNothingToDraw))

	fail = false
	png, err := b.PNG()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(png))
}

func TestSessionViewBindings(t *testing.T) {
	v := newSessionView(plot.ColorMap([]string{"A", "B"}))
	sess, err := dashboard.NewSession("s", testDataset(), models.Thresholds{Mid: 500, Long: 1000}, v.bindings()...)
	require.NoError(t, err)

	_, err = sess.Dispatch(dashboard.SetBrushRange{Range: &models.BrushRange{XMin: 1000, XMax: 2000, YMin: 0, YMax: 20}})
	require.NoError(t, err)

	assert.Len(t, v.overview.Rows(dashboard.TableQuery{}), 3)
	detail := v.detail.Rows(dashboard.TableQuery{})
	require.Len(t, detail, 1)
	assert.Equal(t, "r3", detail[0].ReadID)

	require.Len(t, v.artifacts(), 3)
	for _, a := range v.artifacts() {
		png, err := a.PNG()
		require.NoError(t, err, a.Suffix())
		assert.NotEmpty(t, png)
	}

	p, ok := v.plot("violin-plot-read-length")
	require.True(t, ok)
	assert.Equal(t, "read_length_violin_plot", p.Suffix())
	_, ok = v.plot("missing")
	assert.False(t, ok)
}

func TestScatterFollowsBrushedView(t *testing.T) {
	v := newSessionView(plot.ColorMap([]string{"A", "B"}))
	sess, err := dashboard.NewSession("s", testDataset(), models.Thresholds{Mid: 500, Long: 1000}, v.bindings()...)
	require.NoError(t, err)

	scatter, ok := v.plot("scatter-plot-read-length-qscore")
	require.True(t, ok)
	assert.Equal(t, dashboard.Brushed, scatter.Source())
	violin, ok := v.plot("violin-plot-read-length")
	require.True(t, ok)
	assert.Equal(t, dashboard.Unbrushed, violin.Source())

	_, err = sess.Dispatch(dashboard.SetBrushRange{Range: &models.BrushRange{XMin: 0, XMax: 800, YMin: 0, YMax: 20}})
	require.NoError(t, err)

	scatter.mu.Lock()
	assert.Equal(t, 2, scatter.snap.View.Len())
	scatter.mu.Unlock()
	violin.mu.Lock()
	assert.Equal(t, 3, violin.snap.View.Len())
	violin.mu.Unlock()
}

func TestBarPlotsRender(t *testing.T) {
	v := newSessionView(plot.ColorMap([]string{"A", "B"}))
	_, err := dashboard.NewSession("s", testDataset(), models.Thresholds{Mid: 500, Long: 1000}, v.bindings()...)
	require.NoError(t, err)

	for _, name := range []string{"bucket-counts", "histogram-read-length", "histogram-qscore"} {
		p, ok := v.plot(name)
		require.True(t, ok, name)
		png, err := p.PNG()
		require.NoError(t, err, name)
		assert.Equal(t, "\x89PNG", string(png[:4]), name)
	}
}

func TestSessionViewOf(t *testing.T) {
	colors := plot.ColorMap([]string{"A", "B"})
	reg := dashboard.NewRegistry(testDataset(), models.Thresholds{Mid: 500, Long: 1000}, func() []dashboard.Binding {
		return newSessionView(colors).bindings()
	})
	sess, err := reg.Create()
	require.NoError(t, err)

	v, ok := sessionViewOf(sess)
	require.True(t, ok)
	assert.Len(t, v.plots, 6)
	assert.Equal(t, "overview-table", v.overview.name)
	assert.Equal(t, "detail-table", v.detail.name)

	bare, err := dashboard.NewSession("bare", testDataset(), models.Thresholds{Mid: 500, Long: 1000})
	require.NoError(t, err)
	_, ok = sessionViewOf(bare)
	assert.False(t, ok)
}

func TestArtifactsMatchViewsGeneration(t *testing.T) {
	v := newSessionView(plot.ColorMap([]string{"A", "B"}))
	sess, err := dashboard.NewSession("s", testDataset(), models.Thresholds{Mid: 500, Long: 1000}, v.bindings()...)
	require.NoError(t, err)
	_, err = sess.Dispatch(dashboard.SetSampleSelection{Samples: []string{"A"}})
	require.NoError(t, err)

	err = sess.Do(func(views dashboard.Views) error {
		assert.Equal(t, []string{"A"}, views.State.SelectedSamples())
		for _, a := range v.artifacts() {
			assert.Equal(t, views.Generation, a.(*plotBinding).Generation(), a.Suffix())
		}
		return nil
	})
	require.NoError(t, err)
}
