package plot

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// qualitative palette, same order as plotly's default
var palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// ColorMap assigns a stable color to every sample in first-appearance order.
// It is built from the dataset so colors do not move when the selection changes.
func ColorMap(samples []string) map[string]string {
	colors := make(map[string]string, len(samples))
	for i, name := range samples {
		colors[name] = palette[i%len(palette)]
	}
	return colors
}

func colorOf(colors map[string]string, sample string) string {
	if c, ok := colors[sample]; ok {
		return c
	}
	return palette[0]
}

func drawingColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
