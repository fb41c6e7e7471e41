package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

type dataForGraph interface {
	GetNameGraph() string
	getNameYAxis() string
	getYValues() []float64
	calculateChartDimensions(float64) (int, int)
	generateBarValues() []chart.Value
	generateGrid() []chart.Tick
}

func chartDimensions(bars int, minBarWidth float64) (width, height int) {
	if bars <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if bars < 2 {
		x = 10.0
	} else if bars < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100 // y axis and its labels
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(bars) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func gridTicks(max float64) []chart.Tick {
	var ticks []chart.Tick
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}}
	}
	for i := 0.0; i <= max+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.0f", i),
		})
	}
	return ticks
}
