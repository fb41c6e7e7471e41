package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

var ErrMissingColumns = errors.New("missing required columns")

// LoadFile reads a per-read stats table. The separator is a comma for .csv
// files and a tab otherwise; .gz, .lz4 and .zip are decompressed on the fly.
func LoadFile(filePath string) (*models.Dataset, error) {
	src, err := OpenSource(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer src.Close()

	sep := '\t'
	if strings.EqualFold(filepath.Ext(innerName(filePath)), ".csv") {
		sep = ','
	}
	ds, err := Read(src, sep)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	log.Printf("loaded %d reads from %d samples (%s)", ds.Len(), len(ds.Samples), filePath)
	return ds, nil
}

// Read parses a header row followed by records.
func Read(r io.Reader, sep rune) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	analysis := AnalyzeHeaders(header)
	if analysis == nil || len(analysis.Missing) > 0 {
		var missing []string
		if analysis != nil {
			missing = analysis.Missing
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []models.Record
	extra := map[int]map[string]string{}
	seen := map[string]int{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec, err := rowToRecord(row, analysis)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if prev, ok := seen[rec.ReadID]; ok {
			return nil, fmt.Errorf("row %d: duplicate read_id %q (first seen on row %d)", line, rec.ReadID, prev)
		}
		seen[rec.ReadID] = line

		if len(analysis.Extra) > 0 {
			values := make(map[string]string, len(analysis.Extra))
			for _, name := range analysis.Extra {
				values[name] = safeIndex(row, analysis.Index[name])
			}
			extra[len(records)] = values
		}
		records = append(records, rec)
	}
	if len(extra) == 0 {
		extra = nil
	}
	return models.NewDataset(records, extra), nil
}

func rowToRecord(row []string, h *models.HeaderAnalysis) (models.Record, error) {
	get := func(name string) string {
		return strings.TrimSpace(safeIndex(row, h.Index[name]))
	}

	length, err := parseReadLength(get("read_length"))
	if err != nil {
		return models.Record{}, err
	}
	quality, err := strconv.ParseFloat(get("mean_quality"), 64)
	if err != nil {
		return models.Record{}, fmt.Errorf("mean_quality: %w", err)
	}

	return models.Record{
		ReadID:      get("read_id"),
		Filename:    get("filename"),
		RunID:       get("runid"),
		SampleName:  get("sample_name"),
		ReadLength:  length,
		MeanQuality: quality,
		Channel:     get("channel"),
		ReadNumber:  get("read_number"),
		StartTime:   get("start_time"),
	}, nil
}

// parseReadLength accepts integers and integral floats such as "1500.0".
func parseReadLength(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("read_length %q is not an integer", s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("read_length %d is negative", n)
	}
	return n, nil
}

func safeIndex(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
