package dashboard

import (
	"time"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// Recompute derives both views of a filter state. Output keeps dataset
// order. When no brush is set the brushed view is the unbrushed view.
func Recompute(ds *models.Dataset, st FilterState) (unbrushed, brushed models.DerivedView, err error) {
	started := time.Now()
	defer func() {
		recomputeDuration.Observe(time.Since(started).Seconds())
	}()

	candidates := make([]models.Record, 0, len(ds.Records))
	for _, r := range ds.Records {
		if st.IsSelected(r.SampleName) {
			candidates = append(candidates, r)
		}
	}

	lengths := make([]int, len(candidates))
	for i, r := range candidates {
		lengths[i] = r.ReadLength
	}
	labels, err := Bucketize(lengths, st.thresholds)
	if err != nil {
		return models.DerivedView{}, models.DerivedView{}, err
	}

	rows := make([]models.LabeledRecord, len(candidates))
	for i, r := range candidates {
		rows[i] = models.LabeledRecord{Record: r, Bucket: labels[i]}
	}
	unbrushed = models.DerivedView{Rows: rows}

	brush, ok := st.Brush()
	if !ok {
		return unbrushed, unbrushed, nil
	}
	inside := make([]models.LabeledRecord, 0, len(rows))
	for _, r := range rows {
		if brush.Contains(r.Record) {
			inside = append(inside, r)
		}
	}
	return unbrushed, models.DerivedView{Rows: inside}, nil
}
