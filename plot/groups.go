package plot

import (
	"math"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// Group is the set of values drawn as one violin/strip.
type Group struct {
	Facet  models.BucketLabel
	Sample string
	Values []float64
}

func (g Group) Label() string {
	if g.Facet == "" {
		return g.Sample
	}
	return g.Facet.Title() + " / " + g.Sample
}

func ReadLength(r models.LabeledRecord) float64  { return float64(r.ReadLength) }
func MeanQuality(r models.LabeledRecord) float64 { return r.MeanQuality }

// Groups splits a view per sample (in samples order), and per bucket facet
// when faceted is set. Facets come from the live view. Empty groups are skipped.
func Groups(view models.DerivedView, samples []string, value func(models.LabeledRecord) float64, faceted bool) []Group {
	facets := []models.BucketLabel{""}
	if faceted {
		facets = view.Facets()
	}
	bySample := view.BySample()

	var groups []Group
	for _, facet := range facets {
		for _, sample := range samples {
			var values []float64
			for _, r := range bySample[sample] {
				if facet == "" || r.Bucket == facet {
					values = append(values, value(r))
				}
			}
			if len(values) == 0 {
				continue
			}
			groups = append(groups, Group{Facet: facet, Sample: sample, Values: values})
		}
	}
	return groups
}

// FacetHeight is the plot height for a chart with n facet rows.
func FacetHeight(n int) int {
	h := 200 * n
	if h < 300 {
		return 300
	}
	return h
}

// Histogram counts values into equal-width bins over [min, max].
func Histogram(values []float64, bins int) (xStart, xEnd, counts []float64) {
	if len(values) == 0 || bins <= 0 {
		return nil, nil, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)
	xStart = make([]float64, bins)
	xEnd = make([]float64, bins)
	counts = make([]float64, bins)
	for i := 0; i < bins; i++ {
		xStart[i] = lo + float64(i)*width
		xEnd[i] = xStart[i] + width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return xStart, xEnd, counts
}

// BucketCounts counts rows per bucket label in models.BucketOrder.
func BucketCounts(view models.DerivedView) ([]string, []float64) {
	counts := map[models.BucketLabel]float64{}
	for _, r := range view.Rows {
		counts[r.Bucket]++
	}
	labels := make([]string, len(models.BucketOrder))
	values := make([]float64, len(models.BucketOrder))
	for i, b := range models.BucketOrder {
		labels[i] = b.Title()
		values[i] = counts[b]
	}
	return labels, values
}
