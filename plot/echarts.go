package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// ScatterChart is the interactive counterpart of DrawScatter.
func ScatterChart(view models.DerivedView, samples []string, colors map[string]string, brush *models.BrushRange) *charts.Scatter {
	xAxis := opts.XAxis{Name: axisReadLength, Type: "value"}
	yAxis := opts.YAxis{Name: axisAverageQuality, Type: "value"}
	if brush != nil {
		xAxis.Min, xAxis.Max = brush.XMin, brush.XMax
		yAxis.Min, yAxis.Max = brush.YMin, brush.YMax
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: scatterTitle}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	bySample := view.BySample()
	for _, sample := range samples {
		rows := bySample[sample]
		if len(rows) == 0 {
			continue
		}
		data := make([]opts.ScatterData, 0, len(rows))
		for _, r := range rows {
			data = append(data, opts.ScatterData{
				Name:       r.ReadID,
				Value:      []interface{}{r.ReadLength, r.MeanQuality},
				SymbolSize: 4,
			})
		}
		scatter.AddSeries(sample, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorOf(colors, sample)}))
	}
	return scatter
}

// BoxChart shows the box summary of every group; it stands in for the violin on the page.
func BoxChart(title string, groups []Group, height int) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: fmt.Sprintf("%dpx", height)}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	labels := make([]string, 0, len(groups))
	data := make([]opts.BoxPlotData, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label())
		data = append(data, opts.BoxPlotData{Name: g.Label(), Value: AnalyzeNumbers(g.Values).BoxValues()})
	}
	box.SetXAxis(labels).AddSeries("reads", data)
	return box
}

func HistogramChart(title string, values []float64, bins int, labelFormat string) *charts.Bar {
	xStart, xEnd, counts := Histogram(values, bins)
	labels := make([]string, len(xStart))
	data := make([]opts.BarData, len(xStart))
	for i := range xStart {
		labels[i] = fmt.Sprintf(labelFormat+"-"+labelFormat, xStart[i], xEnd[i])
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	bar.SetXAxis(labels).AddSeries("reads", data)
	return bar
}

// ChartSet is everything drawn on the dashboard for one recompute.
// The scatter and its marginals show the brushed view, the box plots the unbrushed one.
type ChartSet struct {
	Samples   []string
	Colors    map[string]string
	Brush     *models.BrushRange
	Unbrushed models.DerivedView
	Brushed   models.DerivedView
}

// RenderPage writes a standalone HTML page with all interactive charts.
func RenderPage(w io.Writer, set ChartSet) error {
	page := components.NewPage()
	page.AddCharts(
		ScatterChart(set.Brushed, set.Samples, set.Colors, set.Brush),
		HistogramChart(lengthHistTitle, columnValues(set.Brushed, ReadLength), histogramBins, "%.0f"),
		HistogramChart(qualityHistTitle, columnValues(set.Brushed, MeanQuality), histogramBins, "%.1f"),
		BoxChart(qscoreViolinTitle, Groups(set.Unbrushed, set.Samples, MeanQuality, true), FacetHeight(len(set.Unbrushed.Facets()))),
		BoxChart(lengthViolinTitle, Groups(set.Unbrushed, set.Samples, ReadLength, false), 500),
	)
	return page.Render(w)
}
