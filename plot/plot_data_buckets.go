package plot

import (
	"github.com/wcharczuk/go-chart/v2"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// bucketCountsForGraph is a bar per read length bucket.
type bucketCountsForGraph struct {
	labels    []string
	counts    []float64
	colors    []string
	nameGraph string
}

func NewBucketCountsForGraph(view models.DerivedView, nameGraph string) bucketCountsForGraph {
	labels, counts := BucketCounts(view)
	return bucketCountsForGraph{
		labels:    labels,
		counts:    counts,
		colors:    []string{palette[0], palette[1], palette[2]},
		nameGraph: nameGraph,
	}
}

func (d bucketCountsForGraph) GetNameGraph() string {
	return d.nameGraph
}

func (d bucketCountsForGraph) getNameYAxis() string {
	return "Reads"
}

func (d bucketCountsForGraph) getYValues() []float64 {
	return d.counts
}

func (d bucketCountsForGraph) calculateChartDimensions(minBarWidth float64) (int, int) {
	return chartDimensions(len(d.labels), minBarWidth)
}

func (d bucketCountsForGraph) generateBarValues() []chart.Value {
	if findMaxValue(d.counts) == 0 {
		return nil
	}
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.counts[i],
			Label: label,
			Style: chart.Style{
				FillColor:   drawingColor(d.colors[i%len(d.colors)]).WithAlpha(160),
				StrokeColor: drawingColor(d.colors[i%len(d.colors)]),
				StrokeWidth: 1,
			},
		})
	}
	return bars
}

func (d bucketCountsForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.counts))
}
