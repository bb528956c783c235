package engine

// normalize.go coerces the loosely-typed engine payload into the strict
// DatasetArtifact shape, applied once at the boundary. Absent or malformed
// fields become empty sequences and zero counts rather than errors, so
// internal components never see partial data.

import (
	"encoding/json"

	"github.com/datanova/workbench/internal/core"
)

// maxHeadRows is the preview cap carried by an artifact.
const maxHeadRows = 10

// normalizeArtifact maps a full analysis payload to an artifact.
func (c *Client) normalizeArtifact(fileName string, p payload) *core.DatasetArtifact {
	columns := p.Columns
	if columns == nil {
		columns = []string{}
	}

	a := &core.DatasetArtifact{
		FileName:           fileName,
		UploadedAt:         c.now().UTC(),
		RowCount:           nonNegative(p.RowCount),
		ColumnCount:        len(columns),
		Columns:            columns,
		NumericColumns:     intersect(p.NumericColumns, columns),
		CategoricalColumns: intersect(p.CategoricalColumns, columns),
		Summary:            stringOrEmpty(p.Summary),
		Insights:           orEmpty(p.Insights),
		Resources:          orEmptyResources(p.Resources),
		HeadRows:           normalizeHead(p.Head, columns),
		Stats:              p.Stats,
	}
	if a.Stats == nil {
		a.Stats = map[string]any{}
	}
	return a
}

// normalizePatch maps a regeneration payload to a merge patch. A nil field
// stays nil so the merge preserves the artifact's existing value.
func normalizePatch(p payload) core.ArtifactPatch {
	patch := core.ArtifactPatch{
		Summary:   p.Summary,
		Insights:  p.Insights,
		Resources: p.Resources,
		Stats:     p.Stats,
	}
	if len(p.Head) > 0 {
		var rows []map[string]any
		if err := json.Unmarshal(p.Head, &rows); err == nil && rows != nil {
			if len(rows) > maxHeadRows {
				rows = rows[:maxHeadRows]
			}
			patch.HeadRows = rows
		}
	}
	return patch
}

// normalizeHead decodes the head field leniently: a missing or non-array
// value yields an empty preview, rows are capped at maxHeadRows, and row
// keys are restricted to known columns.
func normalizeHead(raw json.RawMessage, columns []string) []map[string]any {
	if len(raw) == 0 {
		return []map[string]any{}
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return []map[string]any{}
	}
	if len(rows) > maxHeadRows {
		rows = rows[:maxHeadRows]
	}

	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		clean := make(map[string]any, len(row))
		for k, v := range row {
			if _, ok := known[k]; ok {
				clean[k] = v
			}
		}
		out = append(out, clean)
	}
	return out
}

// intersect filters names to members of columns, preserving name order.
func intersect(names, columns []string) []string {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := known[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func nonNegative(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orEmptyResources(v []core.Resource) []core.Resource {
	if v == nil {
		return []core.Resource{}
	}
	return v
}
