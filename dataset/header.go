package dataset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pivolan/go_utils"

	"github.com/pivolan/readstats_dashboard/domain/models"
)

// RequiredColumns is the fastcat per-read-stats header.
var RequiredColumns = []string{
	"read_id", "filename", "runid", "sample_name", "read_length",
	"mean_quality", "channel", "read_number", "start_time",
}

var specialSymbols = regexp.MustCompile("[^a-zA-Z0-9]+")

func replaceSpecialSymbols(input string) string {
	processedString := specialSymbols.ReplaceAllString(input, "_")
	processedString = strings.ReplaceAll(processedString, "__", "_")
	return strings.Trim(processedString, "_")
}

// AnalyzeHeaders cleans the header row and checks it against RequiredColumns.
func AnalyzeHeaders(firstRow []string) *models.HeaderAnalysis {
	if len(firstRow) == 0 {
		return nil
	}

	result := &models.HeaderAnalysis{
		Headers:  make([]string, len(firstRow)),
		Index:    make(map[string]int, len(firstRow)),
		Original: firstRow,
	}
	for i, header := range firstRow {
		result.Headers[i] = cleanHeaderName(header, i)
	}
	result.Headers = ValidateHeaders(result.Headers)

	for i, h := range result.Headers {
		result.Index[h] = i
		if !go_utils.InArray(h, RequiredColumns) {
			result.Extra = append(result.Extra, h)
		}
	}
	for _, required := range RequiredColumns {
		if !go_utils.InArray(required, result.Headers) {
			result.Missing = append(result.Missing, required)
		}
	}
	return result
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders renames duplicates: name, name_1, name_2...
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]int)
	result := make([]string, len(headers))

	for i, header := range headers {
		originalHeader := header
		counter := 1

		for {
			if count, exists := seen[header]; exists {
				header = fmt.Sprintf("%s_%d", originalHeader, counter)
				counter++
			} else {
				seen[header] = count + 1
				break
			}
		}

		result[i] = header
	}

	return result
}

func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return generateColumnName(index)
	}
	cleaned := replaceSpecialSymbols(header)
	if cleaned == "" {
		return generateColumnName(index)
	}
	return strings.ToLower(cleaned)
}
