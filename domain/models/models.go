package models

import (
	"errors"
	"fmt"
	"math"
)

type ClickhouseTableName string

// ErrInvalidThresholds is returned when mid >= long.
var ErrInvalidThresholds = errors.New("invalid thresholds")

type ColumnInfo struct {
	Name string
	Type string //Date DateTime64 Int64 Float64 String
}

type HeaderAnalysis struct {
	Headers  []string       // cleaned, de-duplicated header names
	Index    map[string]int // header name -> column position
	Missing  []string       // required columns absent from the header
	Extra    []string       // columns carried in the side map
	Original []string
}

// Record is one row of per-read statistics.
type Record struct {
	ReadID      string  `json:"read_id" gorm:"column:read_id"`
	Filename    string  `json:"filename" gorm:"column:filename"`
	RunID       string  `json:"runid" gorm:"column:runid"`
	SampleName  string  `json:"sample_name" gorm:"column:sample_name"`
	ReadLength  int     `json:"read_length" gorm:"column:read_length"`
	MeanQuality float64 `json:"mean_quality" gorm:"column:mean_quality"`
	Channel     string  `json:"channel" gorm:"column:channel"`
	ReadNumber  string  `json:"read_number" gorm:"column:read_number"`
	StartTime   string  `json:"start_time" gorm:"column:start_time"`
}

// Dataset is loaded once and never mutated afterwards.
// Samples keeps first-appearance order for display.
type Dataset struct {
	Records []Record
	Samples []string
	// Extra holds passthrough columns that are not part of Record, keyed by row index.
	Extra map[int]map[string]string

	sampleSet map[string]struct{}
}

func NewDataset(records []Record, extra map[int]map[string]string) *Dataset {
	ds := &Dataset{
		Records:   records,
		Extra:     extra,
		sampleSet: make(map[string]struct{}),
	}
	for _, r := range records {
		if _, ok := ds.sampleSet[r.SampleName]; ok {
			continue
		}
		ds.sampleSet[r.SampleName] = struct{}{}
		ds.Samples = append(ds.Samples, r.SampleName)
	}
	return ds
}

func (d *Dataset) HasSample(name string) bool {
	_, ok := d.sampleSet[name]
	return ok
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

type BucketLabel string

const (
	BucketShort BucketLabel = "short"
	BucketMid   BucketLabel = "mid"
	BucketLong  BucketLabel = "long"
)

// BucketOrder is the display order of facets.
var BucketOrder = []BucketLabel{BucketShort, BucketMid, BucketLong}

// Title is the facet caption used on charts.
func (b BucketLabel) Title() string {
	return string(b) + " reads"
}

// Thresholds partitions read_length into [0,Mid), [Mid,Long), [Long,inf).
type Thresholds struct {
	Mid  int `json:"mid"`
	Long int `json:"long"`
}

func (t Thresholds) Validate() error {
	if t.Mid >= t.Long {
		return fmt.Errorf("%w: mid %d must be lower than long %d", ErrInvalidThresholds, t.Mid, t.Long)
	}
	return nil
}

// BrushRange is a rectangle over (read_length, mean_quality). Bounds are inclusive.
type BrushRange struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Degenerate reports inverted, empty or NaN bounds.
func (b BrushRange) Degenerate() bool {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) {
			return true
		}
	}
	return b.XMin >= b.XMax || b.YMin >= b.YMax
}

func (b BrushRange) Contains(r Record) bool {
	x := float64(r.ReadLength)
	return x >= b.XMin && x <= b.XMax && r.MeanQuality >= b.YMin && r.MeanQuality <= b.YMax
}

type LabeledRecord struct {
	Record
	Bucket BucketLabel `json:"bucket"`
}

// DerivedView is a read-only projection of a Dataset for one filter state.
type DerivedView struct {
	Rows []LabeledRecord `json:"rows"`
}

func (v DerivedView) Len() int {
	return len(v.Rows)
}

// Facets returns the bucket labels present in the view, in BucketOrder.
func (v DerivedView) Facets() []BucketLabel {
	present := map[BucketLabel]bool{}
	for _, r := range v.Rows {
		present[r.Bucket] = true
	}
	var facets []BucketLabel
	for _, b := range BucketOrder {
		if present[b] {
			facets = append(facets, b)
		}
	}
	return facets
}

func (v DerivedView) ReadIDs() []string {
	ids := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		ids[i] = r.ReadID
	}
	return ids
}

// BySample groups rows by sample, keeping row order inside every group.
func (v DerivedView) BySample() map[string][]LabeledRecord {
	groups := map[string][]LabeledRecord{}
	for _, r := range v.Rows {
		groups[r.SampleName] = append(groups[r.SampleName], r)
	}
	return groups
}
