package engine

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/datanova/workbench/internal/core"
	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func normalizingClient() *Client {
	c := NewClient("http://engine.test", time.Second)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestNormalizeArtifact(t *testing.T) {
	c := normalizingClient()

	tests := []struct {
		name string
		in   payload
		want *core.DatasetArtifact
	}{
		{
			name: "empty payload yields empty artifact",
			in:   payload{},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				Columns:            []string{},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{},
			},
		},
		{
			name: "negative row count coerced to zero",
			in:   payload{RowCount: intPtr(-5), Columns: []string{"A"}},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        1,
				Columns:            []string{"A"},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{},
			},
		},
		{
			name: "classification intersected with columns",
			in: payload{
				Columns:            []string{"A", "B"},
				NumericColumns:     []string{"B", "Ghost"},
				CategoricalColumns: []string{"Phantom", "A"},
			},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        2,
				Columns:            []string{"A", "B"},
				NumericColumns:     []string{"B"},
				CategoricalColumns: []string{"A"},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{},
			},
		},
		{
			name: "column count derived from columns",
			in:   payload{Columns: []string{"A", "B", "C"}},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        3,
				Columns:            []string{"A", "B", "C"},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{},
			},
		},
		{
			name: "head rows filtered to known columns",
			in: payload{
				Columns: []string{"A"},
				Head:    json.RawMessage(`[{"A": 1, "Injected": "x"}]`),
			},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        1,
				Columns:            []string{"A"},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{{"A": float64(1)}},
				Stats:              map[string]any{},
			},
		},
		{
			name: "non-array head discarded",
			in: payload{
				Columns: []string{"A"},
				Head:    json.RawMessage(`{"A": 1}`),
			},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        1,
				Columns:            []string{"A"},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{},
			},
		},
		{
			name: "summary and stats pass through",
			in: payload{
				Columns: []string{"A"},
				Summary: strPtr("ok"),
				Stats:   map[string]any{"mean": 1.5},
			},
			want: &core.DatasetArtifact{
				FileName:           "f.csv",
				UploadedAt:         fixedNow,
				ColumnCount:        1,
				Columns:            []string{"A"},
				NumericColumns:     []string{},
				CategoricalColumns: []string{},
				Summary:            "ok",
				Insights:           []string{},
				Resources:          []core.Resource{},
				HeadRows:           []map[string]any{},
				Stats:              map[string]any{"mean": 1.5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.normalizeArtifact("f.csv", tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("normalizeArtifact() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeArtifact_CapsHeadRows(t *testing.T) {
	c := normalizingClient()

	rows := "["
	for i := 0; i < 25; i++ {
		if i > 0 {
			rows += ","
		}
		rows += fmt.Sprintf(`{"A": %d}`, i)
	}
	rows += "]"

	got := c.normalizeArtifact("f.csv", payload{
		Columns: []string{"A"},
		Head:    json.RawMessage(rows),
	})
	if len(got.HeadRows) != maxHeadRows {
		t.Errorf("len(HeadRows) = %d, want %d", len(got.HeadRows), maxHeadRows)
	}
}

func TestNormalizePatch(t *testing.T) {
	t.Run("absent fields stay nil", func(t *testing.T) {
		patch := normalizePatch(payload{})
		if patch.Summary != nil || patch.Insights != nil || patch.Resources != nil ||
			patch.HeadRows != nil || patch.Stats != nil {
			t.Errorf("empty payload should produce an empty patch: %+v", patch)
		}
	})

	t.Run("present fields carried", func(t *testing.T) {
		patch := normalizePatch(payload{
			Summary:  strPtr("fresh"),
			Insights: []string{"a", "b"},
		})
		if patch.Summary == nil || *patch.Summary != "fresh" {
			t.Errorf("Summary = %v", patch.Summary)
		}
		if len(patch.Insights) != 2 {
			t.Errorf("Insights = %v", patch.Insights)
		}
		if patch.HeadRows != nil {
			t.Error("absent head should stay nil")
		}
	})

	t.Run("malformed head dropped", func(t *testing.T) {
		patch := normalizePatch(payload{Head: json.RawMessage(`"oops"`)})
		if patch.HeadRows != nil {
			t.Errorf("HeadRows = %v, want nil", patch.HeadRows)
		}
	})

	t.Run("head rows capped", func(t *testing.T) {
		rows := "["
		for i := 0; i < 15; i++ {
			if i > 0 {
				rows += ","
			}
			rows += `{"A": 1}`
		}
		rows += "]"
		patch := normalizePatch(payload{Head: json.RawMessage(rows)})
		if len(patch.HeadRows) != maxHeadRows {
			t.Errorf("len(HeadRows) = %d, want %d", len(patch.HeadRows), maxHeadRows)
		}
	})
}
