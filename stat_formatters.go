package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/readstats_dashboard/dashboard"
	"github.com/pivolan/readstats_dashboard/domain/models"
	"github.com/pivolan/readstats_dashboard/plot"
)

// page size of the html data tables
const tableRowLimit = 200

func recordsTable(rows []models.LabeledRecord, limit int) table.Writer {
	t := table.NewWriter()
	header := table.Row{}
	for _, c := range dashboard.TableColumns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, r := range rows {
		if limit > 0 && i >= limit {
			break
		}
		row := table.Row{}
		for _, c := range dashboard.TableColumns {
			row = append(row, dashboard.ColumnValue(r, c))
		}
		t.AppendRow(row)
	}
	if limit > 0 && len(rows) > limit {
		t.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", limit, len(rows))})
	} else {
		t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(rows))})
	}
	t.SetStyle(table.StyleLight)
	return t
}

// RenderRecordsHTML renders up to limit rows as an html table.
func RenderRecordsHTML(rows []models.LabeledRecord, limit int, cssClass string) string {
	t := recordsTable(rows, limit)
	t.Style().HTML.CSSClass = cssClass
	return t.RenderHTML()
}

// summaryTable has one row per sample and bucket with read length and quality statistics.
func summaryTable(view models.DerivedView, samples []string) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Sample", "Bucket", "Reads", "Median length", "Max length", "Median QScore", "Mean QScore"})

	groups := plot.Groups(view, samples, plot.ReadLength, true)
	order := map[string]int{}
	for i, s := range samples {
		order[s] = i
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return order[groups[i].Sample] < order[groups[j].Sample]
	})

	total := 0
	for _, g := range groups {
		var qualities []float64
		for _, r := range view.Rows {
			if r.SampleName == g.Sample && r.Bucket == g.Facet {
				qualities = append(qualities, r.MeanQuality)
			}
		}
		lengths := plot.AnalyzeNumbers(g.Values)
		quality := plot.AnalyzeNumbers(qualities)
		t.AppendRow(table.Row{g.Sample, g.Facet.Title(), lengths.Count, lengths.Median, lengths.Max, quality.Median, quality.Average})
		total += lengths.Count
	}
	t.AppendFooter(table.Row{"", "Total", total})
	t.SetStyle(table.StyleLight)
	return t
}

func RenderSummaryHTML(view models.DerivedView, samples []string) string {
	t := summaryTable(view, samples)
	t.Style().HTML.CSSClass = "summary"
	return t.RenderHTML()
}

func RenderSummaryText(view models.DerivedView, samples []string) string {
	return summaryTable(view, samples).Render()
}
