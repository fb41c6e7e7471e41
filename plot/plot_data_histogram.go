package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// histogramForGraph is a marginal histogram: one bar per [xStart, xEnd) bin.
type histogramForGraph struct {
	xStart, xEnd []float64
	yValues      []float64
	nameGraph    string
	labelFormat  string
}

func NewHistogramForGraph(values []float64, bins int, nameGraph, labelFormat string) histogramForGraph {
	xStart, xEnd, counts := Histogram(values, bins)
	return histogramForGraph{
		xStart:      xStart,
		xEnd:        xEnd,
		yValues:     counts,
		nameGraph:   nameGraph,
		labelFormat: labelFormat,
	}
}

func (d histogramForGraph) GetNameGraph() string {
	return d.nameGraph
}

func (d histogramForGraph) getNameYAxis() string {
	return "Reads"
}

func (d histogramForGraph) getYValues() []float64 {
	return d.yValues
}

func (d histogramForGraph) calculateChartDimensions(minBarWidth float64) (int, int) {
	return chartDimensions(len(d.xStart), minBarWidth)
}

func (d histogramForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	for i := range d.xStart {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: fmt.Sprintf(d.labelFormat+"-"+d.labelFormat, d.xStart[i], d.xEnd[i]),
			Style: chart.Style{
				FillColor: drawing.ColorPurple.WithAlpha(100),
			},
		})
	}
	return bars
}

func (d histogramForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.yValues))
}
