package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

var ErrUnknownColumn = errors.New("unknown column")

// TableColumns lists the columns of the data tables in display order.
var TableColumns = []string{
	"read_id", "filename", "runid", "sample_name", "read_length",
	"mean_quality", "channel", "read_number", "start_time", "bucket",
}

type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpContains     Operator = "contains"
)

// longer operators first so that ">=" wins over ">" at the same position
var operatorTokens = []struct {
	token string
	op    Operator
}{
	{" contains ", OpContains},
	{">=", OpGreaterEqual},
	{"<=", OpLessEqual},
	{"!=", OpNotEqual},
	{"=", OpEqual},
	{"<", OpLess},
	{">", OpGreater},
}

type ColumnFilter struct {
	Column string
	Op     Operator
	Value  string
}

type SortKey struct {
	Column string
	Desc   bool
}

// TableQuery is an ad hoc sort/filter applied to a table, independent of
// the brush.
type TableQuery struct {
	Filters []ColumnFilter
	Sort    []SortKey
}

// ParseColumnFilter parses "column op value", e.g. "read_length >= 1000".
func ParseColumnFilter(expr string) (ColumnFilter, error) {
	expr = strings.TrimSpace(expr)
	best, bestLen := -1, 0
	var op Operator
	for _, t := range operatorTokens {
		idx := strings.Index(expr, t.token)
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best || (idx == best && len(t.token) > bestLen) {
			best, bestLen, op = idx, len(t.token), t.op
		}
	}
	if best <= 0 {
		return ColumnFilter{}, fmt.Errorf("cannot parse filter %q", expr)
	}
	f := ColumnFilter{
		Column: strings.TrimSpace(expr[:best]),
		Op:     op,
		Value:  strings.Trim(strings.TrimSpace(expr[best+bestLen:]), `"'`),
	}
	if !isTableColumn(f.Column) {
		return ColumnFilter{}, fmt.Errorf("%w: %s", ErrUnknownColumn, f.Column)
	}
	return f, nil
}

// ParseTableQuery reads filters separated by ";" and sort keys separated by
// ",", each optionally suffixed with ":desc".
func ParseTableQuery(filters, sortKeys string) (TableQuery, error) {
	var q TableQuery
	for _, expr := range strings.Split(filters, ";") {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		f, err := ParseColumnFilter(expr)
		if err != nil {
			return TableQuery{}, err
		}
		q.Filters = append(q.Filters, f)
	}
	for _, key := range strings.Split(sortKeys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		k := SortKey{Column: key}
		if name, dir, ok := strings.Cut(key, ":"); ok {
			k.Column = strings.TrimSpace(name)
			k.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
		}
		if !isTableColumn(k.Column) {
			return TableQuery{}, fmt.Errorf("%w: %s", ErrUnknownColumn, k.Column)
		}
		q.Sort = append(q.Sort, k)
	}
	return q, nil
}

// ApplyTableQuery returns a new slice; the view is not modified.
func ApplyTableQuery(view models.DerivedView, q TableQuery) []models.LabeledRecord {
	rows := make([]models.LabeledRecord, 0, len(view.Rows))
	for _, r := range view.Rows {
		if matchesAll(r, q.Filters) {
			rows = append(rows, r)
		}
	}
	if len(q.Sort) == 0 {
		return rows
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range q.Sort {
			c := compareValues(k.Column, ColumnValue(rows[i], k.Column), ColumnValue(rows[j], k.Column))
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return rows
}

func matchesAll(r models.LabeledRecord, filters []ColumnFilter) bool {
	for _, f := range filters {
		v := ColumnValue(r, f.Column)
		c := compareValues(f.Column, v, f.Value)
		var ok bool
		switch f.Op {
		case OpEqual:
			ok = c == 0
		case OpNotEqual:
			ok = c != 0
		case OpLess:
			ok = c < 0
		case OpLessEqual:
			ok = c <= 0
		case OpGreater:
			ok = c > 0
		case OpGreaterEqual:
			ok = c >= 0
		case OpContains:
			ok = strings.Contains(v, f.Value)
		}
		if !ok {
			return false
		}
	}
	return true
}

// ColumnValue renders one cell of a table row.
func ColumnValue(r models.LabeledRecord, column string) string {
	switch column {
	case "read_id":
		return r.ReadID
	case "filename":
		return r.Filename
	case "runid":
		return r.RunID
	case "sample_name":
		return r.SampleName
	case "read_length":
		return strconv.Itoa(r.ReadLength)
	case "mean_quality":
		return strconv.FormatFloat(r.MeanQuality, 'f', -1, 64)
	case "channel":
		return r.Channel
	case "read_number":
		return r.ReadNumber
	case "start_time":
		return r.StartTime
	case "bucket":
		return string(r.Bucket)
	}
	return ""
}

// numericColumns sort and filter as numbers, every other column as text.
var numericColumns = map[string]bool{
	"read_length":  true,
	"mean_quality": true,
	"channel":      true,
	"read_number":  true,
}

// compareValues compares two cells of column. In a numeric column values
// that do not parse sort after all numbers, then as text, which keeps the
// order total.
func compareValues(column, a, b string) int {
	if !numericColumns[column] {
		return strings.Compare(a, b)
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func isTableColumn(name string) bool {
	for _, c := range TableColumns {
		if c == name {
			return true
		}
	}
	return false
}
