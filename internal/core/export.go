package core

// export.go turns the current artifact into downloadable byte streams.
// Every function here is pure: same artifact in, same bytes out. No
// network, no store mutation. The chart export passes through the rendered
// image reference; it never re-derives the image.

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ExportFormat identifies a download format for the current artifact.
type ExportFormat string

const (
	FormatText     ExportFormat = "txt"
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "md"
)

// ErrUnknownFormat is returned for a format outside the supported set.
var ErrUnknownFormat = fmt.Errorf("unknown export format")

// Export serializes the artifact in the given format and returns the bytes
// with their content type.
func Export(a *DatasetArtifact, format ExportFormat) ([]byte, string, error) {
	switch format {
	case FormatText:
		return ExportText(a), "text/plain; charset=utf-8", nil
	case FormatJSON:
		data, err := ExportJSON(a)
		return data, "application/json", err
	case FormatMarkdown:
		return ExportMarkdown(a), "text/markdown; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ExportText returns the summary field verbatim.
func ExportText(a *DatasetArtifact) []byte {
	return []byte(a.Summary)
}

// ExportJSON returns the full artifact. Key order is stable: struct fields
// marshal in declaration order and map keys are sorted by encoding/json.
func ExportJSON(a *DatasetArtifact) ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return data, nil
}

// ExportMarkdown renders a fixed report template: title, generation
// timestamp, summary, bulleted insights, and a stats block.
func ExportMarkdown(a *DatasetArtifact) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Analysis Report: %s\n\n", a.FileName)
	fmt.Fprintf(&b, "Generated: %s\n\n", a.UploadedAt.UTC().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Summary\n\n")
	b.WriteString(a.Summary)
	b.WriteString("\n")

	if len(a.Insights) > 0 {
		b.WriteString("\n## Key Insights\n\n")
		for _, insight := range a.Insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}

	b.WriteString("\n## Dataset Statistics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Rows | %d |\n", a.RowCount)
	fmt.Fprintf(&b, "| Columns | %d |\n", a.ColumnCount)
	for _, k := range sortedStatKeys(a.Stats) {
		fmt.Fprintf(&b, "| %s | %v |\n", k, a.Stats[k])
	}

	return []byte(b.String())
}

func sortedStatKeys(stats map[string]any) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExportFileName derives the deterministic download name for an artifact
// export from the source file name.
func ExportFileName(sourceName string, format ExportFormat) string {
	base := exportBaseName(sourceName)
	switch format {
	case FormatText:
		return base + "_summary.txt"
	case FormatJSON:
		return base + "_analysis.json"
	case FormatMarkdown:
		return base + "_report.md"
	default:
		return base + "." + string(format)
	}
}

// ChartDownloadName derives the download name for a rendered chart image.
func ChartDownloadName(sourceName string, t ChartType) string {
	return fmt.Sprintf("%s_%s_chart.png", exportBaseName(sourceName), t)
}

// exportBaseName strips the extension and replaces characters unsafe in a
// download name.
func exportBaseName(sourceName string) string {
	base := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	if base == "" || base == "." {
		return "dataset"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
