package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExportText(t *testing.T) {
	a := testArtifact()

	got := ExportText(a)
	if string(got) != a.Summary {
		t.Errorf("ExportText() = %q, want the summary verbatim", got)
	}
}

func TestExportJSON_RoundTrip(t *testing.T) {
	want := testArtifact()
	// JSON has no integer type, keep values representable for the round trip
	want.Stats = map[string]any{"sales_mean": 104.25, "top_region": "West"}

	data, err := ExportJSON(want)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var got DatasetArtifact
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportJSON_Deterministic(t *testing.T) {
	a := testArtifact()

	first, err := ExportJSON(a)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	second, err := ExportJSON(a)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if string(first) != string(second) {
		t.Error("ExportJSON() must produce identical bytes for identical artifacts")
	}
}

func TestExportMarkdown(t *testing.T) {
	a := testArtifact()

	report := string(ExportMarkdown(a))

	for _, want := range []string{
		"# Data Analysis Report: sales.csv",
		"Generated: 2026-03-14 12:00 UTC",
		"## Summary",
		a.Summary,
		"## Key Insights",
		"- Western region leads revenue",
		"- Q4 shows seasonal spike",
		"## Dataset Statistics",
		"| Rows | 5000 |",
		"| Columns | 4 |",
		"| sales_mean | 104.25 |",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("markdown report missing %q\n%s", want, report)
		}
	}
}

func TestExportMarkdown_NoInsights(t *testing.T) {
	a := testArtifact()
	a.Insights = nil

	report := string(ExportMarkdown(a))
	if strings.Contains(report, "## Key Insights") {
		t.Error("insights section should be omitted when there are none")
	}
	if !strings.Contains(report, "## Dataset Statistics") {
		t.Error("stats section should always be present")
	}
}

func TestExport_Formats(t *testing.T) {
	a := testArtifact()

	tests := []struct {
		format      ExportFormat
		contentType string
	}{
		{FormatText, "text/plain; charset=utf-8"},
		{FormatJSON, "application/json"},
		{FormatMarkdown, "text/markdown; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			data, contentType, err := Export(a, tt.format)
			if err != nil {
				t.Fatalf("Export(%q) error = %v", tt.format, err)
			}
			if len(data) == 0 {
				t.Error("Export() returned no data")
			}
			if contentType != tt.contentType {
				t.Errorf("content type = %q, want %q", contentType, tt.contentType)
			}
		})
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	_, _, err := Export(testArtifact(), "pdf")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Export(pdf) = %v, want ErrUnknownFormat", err)
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		format     ExportFormat
		want       string
	}{
		{"text", "sales.csv", FormatText, "sales_summary.txt"},
		{"json", "sales.csv", FormatJSON, "sales_analysis.json"},
		{"markdown", "sales.csv", FormatMarkdown, "sales_report.md"},
		{"spaces sanitized", "q4 sales data.csv", FormatText, "q4_sales_data_summary.txt"},
		{"path stripped", "uploads/sales.csv", FormatJSON, "sales_analysis.json"},
		{"empty name", "", FormatText, "dataset_summary.txt"},
		{"only extension", ".csv", FormatText, "dataset_summary.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportFileName(tt.sourceName, tt.format); got != tt.want {
				t.Errorf("ExportFileName(%q, %q) = %q, want %q", tt.sourceName, tt.format, got, tt.want)
			}
		})
	}
}

func TestChartDownloadName(t *testing.T) {
	tests := []struct {
		sourceName string
		chartType  ChartType
		want       string
	}{
		{"sales.csv", ChartBar, "sales_bar_chart.png"},
		{"sales.csv", ChartPie, "sales_pie_chart.png"},
		{"q4 report.csv", ChartScatter, "q4_report_scatter_chart.png"},
	}

	for _, tt := range tests {
		if got := ChartDownloadName(tt.sourceName, tt.chartType); got != tt.want {
			t.Errorf("ChartDownloadName(%q, %q) = %q, want %q", tt.sourceName, tt.chartType, got, tt.want)
		}
	}
}
