package export

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var ErrNothingToExport = errors.New("no samples selected, nothing to export")

const (
	SuffixScatter      = "qscore_read_length_scatter_plot"
	SuffixQScoreViolin = "qscore_read_length_violin_plot"
	SuffixLengthViolin = "read_length_violin_plot"

	allSamples = "all_samples"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Artifact is a plot that can be exported as a PNG image.
type Artifact interface {
	Suffix() string
	PNG() ([]byte, error)
}

// ArtifactPrefix builds a file name prefix from the selected samples.
func ArtifactPrefix(samples []string) string {
	if len(samples) == 0 {
		return allSamples
	}
	names := make([]string, len(samples))
	copy(names, samples)
	sort.Strings(names)
	for i, name := range names {
		name = unidecode.Unidecode(name)
		name = unsafeName.ReplaceAllString(strings.TrimSpace(name), "-")
		if name == "" {
			name = "unnamed"
		}
		names[i] = name
	}
	return strings.Join(names, "_")
}

// ExportPlots writes every artifact as <prefix>--<suffix>.png and returns the written names.
func ExportPlots(sink Sink, samples []string, artifacts []Artifact) ([]string, error) {
	if len(samples) == 0 {
		return nil, ErrNothingToExport
	}
	prefix := ArtifactPrefix(samples)

	var written []string
	for _, a := range artifacts {
		name := fmt.Sprintf("%s--%s.png", prefix, a.Suffix())
		data, err := a.PNG()
		if err != nil {
			return written, fmt.Errorf("render %s: %w", name, err)
		}
		if err := sink.Put(name, data); err != nil {
			return written, fmt.Errorf("export %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}

// ExportReadIDs writes ids one per line, without a trailing newline.
func ExportReadIDs(sink Sink, name string, ids []string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: no file name provided", ErrDestinationUnavailable)
	}
	if err := sink.Put(name, []byte(strings.Join(ids, "\n"))); err != nil {
		return fmt.Errorf("export read ids: %w", err)
	}
	return nil
}
