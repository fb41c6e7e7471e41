package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

var ErrNothingToDraw = errors.New("nothing to draw")

const (
	scatterTitle       = "Quality Score over Read Length"
	qscoreViolinTitle  = "Quality Score over Read Length by Sample"
	lengthViolinTitle  = "Read Length by Sample"
	axisReadLength     = "Read Length"
	axisAverageQuality = "Average QScore"
	lengthHistTitle    = "Read Length distribution"
	qualityHistTitle   = "QScore distribution"
	bucketCountsTitle  = "Reads per length bucket"

	histogramBins = 30
)

// DrawScatter renders quality over length, one colored series per sample.
// When brush is set the axes are zoomed to it.
func DrawScatter(view models.DerivedView, samples []string, colors map[string]string, brush *models.BrushRange) ([]byte, error) {
	if view.Len() == 0 {
		return nil, ErrNothingToDraw
	}
	bySample := view.BySample()

	var series []chart.Series
	var xs, ys []float64
	for _, sample := range samples {
		rows := bySample[sample]
		if len(rows) == 0 {
			continue
		}
		s := chart.ContinuousSeries{
			Name: sample,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    drawingColor(colorOf(colors, sample)).WithAlpha(180),
			},
		}
		for _, r := range rows {
			s.XValues = append(s.XValues, float64(r.ReadLength))
			s.YValues = append(s.YValues, r.MeanQuality)
		}
		xs = append(xs, s.XValues...)
		ys = append(ys, s.YValues...)
		series = append(series, s)
	}
	if len(series) == 0 {
		return nil, ErrNothingToDraw
	}

	xRange, yRange := paddedRange(xs), paddedRange(ys)
	if brush != nil {
		xRange = &chart.ContinuousRange{Min: brush.XMin, Max: brush.XMax}
		yRange = &chart.ContinuousRange{Min: brush.YMin, Max: brush.YMax}
	}

	graph := chart.Chart{
		Title:  scatterTitle,
		Width:  1400,
		Height: 800,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Name:           axisReadLength,
			Range:          xRange,
			ValueFormatter: intFormatter,
		},
		YAxis: chart.YAxis{
			Name:           axisAverageQuality,
			Range:          yRange,
			ValueFormatter: floatFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return render(&graph)
}

// DrawViolin renders groups as strips of points with their box summary
// (quartile and median bars). Groups of one facet sit next to each other.
func DrawViolin(title, yName string, groups []Group, colors map[string]string, height int) ([]byte, error) {
	if len(groups) == 0 {
		return nil, ErrNothingToDraw
	}

	var series []chart.Series
	var ticks []chart.Tick
	var ys []float64
	x := 0.0
	var prevFacet models.BucketLabel
	for i, g := range groups {
		if i > 0 && g.Facet != prevFacet {
			x++ // gap between facets
		}
		prevFacet = g.Facet
		x++
		ticks = append(ticks, chart.Tick{Value: x, Label: g.Label()})
		color := drawingColor(colorOf(colors, g.Sample))

		points := chart.ContinuousSeries{
			Name: g.Label(),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    2,
				DotColor:    color.WithAlpha(120),
			},
		}
		for j, v := range g.Values {
			points.XValues = append(points.XValues, x+jitter(j))
			points.YValues = append(points.YValues, v)
		}
		ys = append(ys, g.Values...)
		series = append(series, points)

		stats := AnalyzeNumbers(g.Values)
		for k, v := range stats.BoxValues()[1:4] {
			width := 2.0
			if k == 1 {
				width = 4 // median
			}
			series = append(series, chart.ContinuousSeries{
				XValues: []float64{x - 0.3, x + 0.3},
				YValues: []float64{v, v},
				Style:   chart.Style{StrokeWidth: width, StrokeColor: color},
			})
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  maxInt(800, 160*len(groups)),
		Height: height,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 80},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: x + 1},
			Ticks: append([]chart.Tick{{Value: 0}}, append(ticks, chart.Tick{Value: x + 1})...),
			Style: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          paddedRange(ys),
			ValueFormatter: floatFormatter,
		},
		Series: series,
	}
	return render(&graph)
}

// DrawQualityViolin is the quality violin faceted by read length bucket.
func DrawQualityViolin(view models.DerivedView, samples []string, colors map[string]string) ([]byte, error) {
	groups := Groups(view, samples, MeanQuality, true)
	return DrawViolin(qscoreViolinTitle, axisAverageQuality, groups, colors, FacetHeight(len(view.Facets())))
}

func DrawLengthViolin(view models.DerivedView, samples []string, colors map[string]string) ([]byte, error) {
	groups := Groups(view, samples, ReadLength, false)
	return DrawViolin(lengthViolinTitle, axisReadLength, groups, colors, 600)
}

// DrawBucketCounts is a bar per read length bucket.
func DrawBucketCounts(view models.DerivedView) ([]byte, error) {
	return DrawPlotBar(NewBucketCountsForGraph(view, bucketCountsTitle))
}

// DrawLengthHistogram is the read length marginal of the scatter.
func DrawLengthHistogram(view models.DerivedView) ([]byte, error) {
	return DrawPlotBar(NewHistogramForGraph(columnValues(view, ReadLength), histogramBins, lengthHistTitle, "%.0f"))
}

// DrawQualityHistogram is the quality marginal of the scatter.
func DrawQualityHistogram(view models.DerivedView) ([]byte, error) {
	return DrawPlotBar(NewHistogramForGraph(columnValues(view, MeanQuality), histogramBins, qualityHistTitle, "%.1f"))
}

func columnValues(view models.DerivedView, value func(models.LabeledRecord) float64) []float64 {
	values := make([]float64, len(view.Rows))
	for i, r := range view.Rows {
		values[i] = value(r)
	}
	return values
}

func DrawPlotBar(data dataForGraph) ([]byte, error) {
	barValues := data.generateBarValues()
	if len(barValues) == 0 {
		return nil, ErrNothingToDraw
	}
	paddingX := customizePaddingXBottom(barValues)
	width, height := data.calculateChartDimensions(100)
	bar := chart.BarChart{}
	bar.Title = data.GetNameGraph()
	bar.Background = chart.Style{
		StrokeColor: chart.ColorBlack,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.getNameYAxis(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: math.Max(1, findMaxValue(data.getYValues())),
		},
		Style: chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: data.generateGrid(),
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %v", err)
	}
	return buffer.Bytes(), nil
}

func render(graph *chart.Chart) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	graph.Background.StrokeWidth = 1
	graph.Background.StrokeColor = drawing.ColorFromHex("efefef")
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %v", err)
	}
	return buffer.Bytes(), nil
}

// paddedRange adds 5% on both sides and never returns an empty range.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// jitter spreads points of a strip deterministically.
func jitter(i int) float64 {
	return float64(i%9-4) * 0.05
}

func intFormatter(v interface{}) string {
	if vf, isFloat := v.(float64); isFloat {
		return fmt.Sprintf("%.0f", vf)
	}
	return ""
}

func floatFormatter(v interface{}) string {
	if vf, isFloat := v.(float64); isFloat {
		return fmt.Sprintf("%.1f", vf)
	}
	return ""
}

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	// normalized is in [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return count * 8
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
