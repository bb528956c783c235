// Package core provides the business logic for the dataset workflow.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Resource is a reference returned by the analysis engine alongside the
// summary, typically a link to related reading.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DatasetArtifact is the structured result of analyzing one uploaded file.
// Exactly one artifact is current per session at any time. It is replaced
// wholesale by a new upload and field-merged by a regeneration response.
type DatasetArtifact struct {
	FileName    string    `json:"fileName"`
	UploadedAt  time.Time `json:"uploadedAt"`
	RowCount    int       `json:"rowCount"`
	ColumnCount int       `json:"columnCount"`

	// Columns preserves source column order. Names are unique within one
	// artifact but not across uploads.
	Columns []string `json:"columns"`

	// Column classification produced by the engine and treated as ground
	// truth for chart validation. Both sets are subsets of Columns.
	NumericColumns     []string `json:"numericColumns"`
	CategoricalColumns []string `json:"categoricalColumns"`

	Summary   string     `json:"summary"`
	Insights  []string   `json:"insights"`
	Resources []Resource `json:"resources"`

	// HeadRows holds at most 10 preview rows; each key is a member of Columns.
	HeadRows []map[string]any `json:"headRows"`

	// Stats is a free-form key/value mapping with no fixed schema.
	Stats map[string]any `json:"stats"`
}

// HasColumn reports whether name is one of the artifact's columns.
func (a *DatasetArtifact) HasColumn(name string) bool {
	for _, c := range a.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether name is classified as a numeric column.
func (a *DatasetArtifact) IsNumeric(name string) bool {
	for _, c := range a.NumericColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the artifact. Consumers always operate on
// snapshots; only the session store mutates the live artifact.
func (a *DatasetArtifact) Clone() *DatasetArtifact {
	if a == nil {
		return nil
	}
	out := *a
	out.Columns = append([]string(nil), a.Columns...)
	out.NumericColumns = append([]string(nil), a.NumericColumns...)
	out.CategoricalColumns = append([]string(nil), a.CategoricalColumns...)
	out.Insights = append([]string(nil), a.Insights...)
	out.Resources = append([]Resource(nil), a.Resources...)
	if a.HeadRows != nil {
		out.HeadRows = make([]map[string]any, len(a.HeadRows))
		for i, row := range a.HeadRows {
			cp := make(map[string]any, len(row))
			for k, v := range row {
				cp[k] = v
			}
			out.HeadRows[i] = cp
		}
	}
	if a.Stats != nil {
		out.Stats = make(map[string]any, len(a.Stats))
		for k, v := range a.Stats {
			out.Stats[k] = v
		}
	}
	return &out
}

// ArtifactPatch carries the fields of a regeneration response. A nil field
// means "absent": merging preserves the artifact's existing value. Counts,
// file name, and column classification never change on regeneration, so the
// patch does not carry them.
type ArtifactPatch struct {
	Summary   *string          `json:"summary,omitempty"`
	Insights  []string         `json:"insights,omitempty"`
	Resources []Resource       `json:"resources,omitempty"`
	HeadRows  []map[string]any `json:"headRows,omitempty"`
	Stats     map[string]any   `json:"stats,omitempty"`
}

// Overlay returns the patch formed by applying q on top of p. Merging two
// patches then applying the result is equivalent to applying them in order.
func (p ArtifactPatch) Overlay(q ArtifactPatch) ArtifactPatch {
	out := p
	if q.Summary != nil {
		out.Summary = q.Summary
	}
	if q.Insights != nil {
		out.Insights = q.Insights
	}
	if q.Resources != nil {
		out.Resources = q.Resources
	}
	if q.HeadRows != nil {
		out.HeadRows = q.HeadRows
	}
	if q.Stats != nil {
		out.Stats = q.Stats
	}
	return out
}

// apply overlays the patch's non-absent fields onto the artifact.
func (p ArtifactPatch) apply(a *DatasetArtifact) {
	if p.Summary != nil {
		a.Summary = *p.Summary
	}
	if p.Insights != nil {
		a.Insights = append([]string(nil), p.Insights...)
	}
	if p.Resources != nil {
		a.Resources = append([]Resource(nil), p.Resources...)
	}
	if p.HeadRows != nil {
		a.HeadRows = append([]map[string]any(nil), p.HeadRows...)
	}
	if p.Stats != nil {
		a.Stats = p.Stats
	}
}

// SummaryLength controls how long the generated summary should be.
type SummaryLength string

const (
	LengthConcise SummaryLength = "concise"
	LengthMedium  SummaryLength = "medium"
	LengthLengthy SummaryLength = "lengthy"
)

// SummaryTone controls the writing style of the generated summary.
type SummaryTone string

const (
	ToneProfessional SummaryTone = "professional"
	ToneTechnical    SummaryTone = "technical"
	ToneCasual       SummaryTone = "casual"
)

// SummaryAudience controls who the generated summary is written for.
type SummaryAudience string

const (
	AudienceGeneral   SummaryAudience = "general"
	AudienceExecutive SummaryAudience = "executive"
	AudienceTechnical SummaryAudience = "technical"
	AudienceAcademic  SummaryAudience = "academic"
)

// SummaryParams parameterizes summary generation. Comparable by value, so
// the regenerator can diff against the last-applied snapshot directly.
type SummaryParams struct {
	Length   SummaryLength   `json:"length"`
	Tone     SummaryTone     `json:"tone"`
	Audience SummaryAudience `json:"audience"`
}

// DefaultSummaryParams returns the parameters applied when an upload carries
// no explicit summary configuration.
func DefaultSummaryParams() SummaryParams {
	return SummaryParams{
		Length:   LengthMedium,
		Tone:     ToneProfessional,
		Audience: AudienceGeneral,
	}
}

// Validate checks that every field is a member of its closed enum.
func (p SummaryParams) Validate() error {
	switch p.Length {
	case LengthConcise, LengthMedium, LengthLengthy:
	default:
		return fmt.Errorf("%w: length %q", ErrInvalidSummaryParams, p.Length)
	}
	switch p.Tone {
	case ToneProfessional, ToneTechnical, ToneCasual:
	default:
		return fmt.Errorf("%w: tone %q", ErrInvalidSummaryParams, p.Tone)
	}
	switch p.Audience {
	case AudienceGeneral, AudienceExecutive, AudienceTechnical, AudienceAcademic:
	default:
		return fmt.Errorf("%w: audience %q", ErrInvalidSummaryParams, p.Audience)
	}
	return nil
}

// ChartType identifies one of the supported chart renderings.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
)

// ChartStyle holds the presentation parameters of a chart request.
type ChartStyle struct {
	Color    string `json:"color"`
	Title    string `json:"title"`
	ShowGrid bool   `json:"showGrid"`
}

// ChartInput is the raw user-supplied chart configuration, prior to
// validation against the artifact's column classification.
type ChartInput struct {
	ChartType ChartType  `json:"chartType"`
	XAxis     string     `json:"xAxis"`
	YAxis     string     `json:"yAxis"`
	RowLimit  int        `json:"rowLimit"`
	Style     ChartStyle `json:"style"`
}

// ChartRequest is a validated chart configuration, safe to hand to the
// engine. RowLimit is clamped and YAxis is cleared for types that ignore it.
// Never persisted.
type ChartRequest struct {
	ChartType ChartType
	XAxis     string
	YAxis     string
	RowLimit  int
	Style     ChartStyle
}

// ChartPhase is a state in the per-session chart lifecycle.
type ChartPhase string

const (
	ChartUnselected  ChartPhase = "unselected"
	ChartConfiguring ChartPhase = "configuring"
	ChartRequested   ChartPhase = "requested"
	ChartRendered    ChartPhase = "rendered"
	ChartFailed      ChartPhase = "failed"
)

// ChartSession is the state of the current chart configuration for one
// browser session. ImageRef is set only in the rendered phase; FailReason
// only in the failed phase.
type ChartSession struct {
	Phase      ChartPhase `json:"phase"`
	ChartType  ChartType  `json:"chartType,omitempty"`
	Input      ChartInput `json:"input"`
	ImageRef   string     `json:"imageRef,omitempty"`
	FailReason string     `json:"failReason,omitempty"`
}
