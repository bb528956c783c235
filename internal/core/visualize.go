package core

// visualize.go validates chart configuration against the artifact's column
// classification and drives the per-session chart state machine:
//
//	Unselected -> Configuring -> Requested -> {Rendered | Failed}
//
// Rendered and Failed both return to Configuring when a parameter is edited,
// or to Unselected when the user picks a different chart type. Only a
// configuration that passes every validation rule is handed to the engine.

import (
	"context"
	"fmt"

	"github.com/datanova/workbench/internal/logging"
)

// Row-limit bounds. Requests outside the bounds are clamped silently;
// an out-of-range limit is a correction, not an error.
const (
	minRowLimit = 10
	maxRowLimit = 1000
)

// axisRule declares the axis requirements of one chart type.
type axisRule struct {
	label     string
	requiresY bool // Y axis required and must be numeric
}

// chartAxisRules is the closed table of supported chart types. Adding a
// chart type means adding one entry here, not another conditional in the
// validation path.
var chartAxisRules = map[ChartType]axisRule{
	ChartBar:     {label: "Bar chart", requiresY: true},
	ChartLine:    {label: "Line chart", requiresY: true},
	ChartScatter: {label: "Scatter plot", requiresY: true},
	ChartPie:     {label: "Pie chart", requiresY: false},
}

// ChartTypeInfo describes one supported chart type for clients building a
// configuration UI.
type ChartTypeInfo struct {
	Type      ChartType `json:"type"`
	Label     string    `json:"label"`
	RequiresY bool      `json:"requiresY"`
}

// ChartTypes returns the supported chart types in a stable order.
func ChartTypes() []ChartTypeInfo {
	out := make([]ChartTypeInfo, 0, len(chartAxisRules))
	for _, t := range []ChartType{ChartBar, ChartLine, ChartPie, ChartScatter} {
		rule := chartAxisRules[t]
		out = append(out, ChartTypeInfo{Type: t, Label: rule.label, RequiresY: rule.requiresY})
	}
	return out
}

// BuildChartRequest validates a chart configuration against the artifact.
// Rules are applied in order: missing axis, then unknown column, then type
// mismatch. The row limit is clamped to [10, min(rowCount, 1000)]. For
// chart types that do not use a Y axis, a supplied Y axis is ignored.
func BuildChartRequest(a *DatasetArtifact, in ChartInput) (ChartRequest, error) {
	rule, ok := chartAxisRules[in.ChartType]
	if !ok {
		return ChartRequest{}, &ValidationError{Reason: UnsupportedChart, Column: string(in.ChartType)}
	}

	if in.XAxis == "" {
		return ChartRequest{}, &ValidationError{Reason: MissingAxis, Axis: "x"}
	}
	if rule.requiresY && in.YAxis == "" {
		return ChartRequest{}, &ValidationError{Reason: MissingAxis, Axis: "y"}
	}

	if !a.HasColumn(in.XAxis) {
		return ChartRequest{}, &ValidationError{Reason: UnknownColumn, Axis: "x", Column: in.XAxis}
	}
	if rule.requiresY {
		if !a.HasColumn(in.YAxis) {
			return ChartRequest{}, &ValidationError{Reason: UnknownColumn, Axis: "y", Column: in.YAxis}
		}
		if !a.IsNumeric(in.YAxis) {
			return ChartRequest{}, &ValidationError{Reason: TypeMismatch, Axis: "y", Column: in.YAxis}
		}
	}

	req := ChartRequest{
		ChartType: in.ChartType,
		XAxis:     in.XAxis,
		RowLimit:  clampRowLimit(in.RowLimit, a.RowCount),
		Style:     in.Style,
	}
	if rule.requiresY {
		req.YAxis = in.YAxis
	}
	return req, nil
}

// clampRowLimit clamps limit to [minRowLimit, min(rowCount, maxRowLimit)].
func clampRowLimit(limit, rowCount int) int {
	hi := rowCount
	if hi > maxRowLimit {
		hi = maxRowLimit
	}
	if hi < minRowLimit {
		hi = minRowLimit
	}
	if limit < minRowLimit {
		return minRowLimit
	}
	if limit > hi {
		return hi
	}
	return limit
}

// VisualizationConfigurator drives chart configuration and generation for
// browser sessions.
type VisualizationConfigurator struct {
	engine Engine
	store  *SessionStore
}

// NewVisualizationConfigurator creates a configurator.
func NewVisualizationConfigurator(engine Engine, store *SessionStore) *VisualizationConfigurator {
	return &VisualizationConfigurator{engine: engine, store: store}
}

// Select picks a chart type and moves the chart session to the configuring
// phase. Picking a different type than the current one discards the
// in-progress configuration.
func (v *VisualizationConfigurator) Select(ctx context.Context, sessionID string, t ChartType) (ChartSession, error) {
	if _, ok := chartAxisRules[t]; !ok {
		return ChartSession{}, &ValidationError{Reason: UnsupportedChart, Column: string(t)}
	}

	cs := v.store.ChartSession(ctx, sessionID)
	if cs.ChartType != t {
		cs = ChartSession{}
	}
	cs.Phase = ChartConfiguring
	cs.ChartType = t
	cs.Input.ChartType = t
	cs.ImageRef = ""
	cs.FailReason = ""
	v.store.SetChartSession(ctx, sessionID, cs)
	return cs, nil
}

// Reset discards the chart session entirely.
func (v *VisualizationConfigurator) Reset(ctx context.Context, sessionID string) ChartSession {
	cs := ChartSession{Phase: ChartUnselected}
	v.store.SetChartSession(ctx, sessionID, cs)
	return cs
}

// Generate validates the configuration and requests a rendering from the
// engine. The engine call operates on a snapshot of the artifact, so it may
// overlap an upload or regeneration; a failure moves the chart session to
// the failed phase and preserves the artifact.
func (v *VisualizationConfigurator) Generate(ctx context.Context, sessionID string, in ChartInput) (ChartSession, error) {
	snapshot, ok := v.store.Get(ctx, sessionID)
	if !ok {
		return ChartSession{}, ErrNoActiveSession
	}

	req, err := BuildChartRequest(snapshot, in)
	if err != nil {
		cs := ChartSession{Phase: ChartConfiguring, ChartType: in.ChartType, Input: in}
		v.store.SetChartSession(ctx, sessionID, cs)
		return cs, err
	}

	cs := ChartSession{Phase: ChartRequested, ChartType: in.ChartType, Input: in}
	v.store.SetChartSession(ctx, sessionID, cs)

	imageRef, err := v.engine.Visualize(ctx, snapshot, req)
	if err != nil {
		failed := cs
		failed.Phase = ChartFailed
		failed.FailReason = MapError(err).Message
		if !v.store.SwapChartSession(ctx, sessionID, cs, failed) {
			return v.store.ChartSession(ctx, sessionID), fmt.Errorf("chart generation: %w", err)
		}
		return failed, fmt.Errorf("chart generation: %w", err)
	}

	rendered := cs
	rendered.Phase = ChartRendered
	rendered.ImageRef = imageRef
	if !v.store.SwapChartSession(ctx, sessionID, cs, rendered) {
		// A reset or a new upload moved the chart session on while the
		// engine was rendering; the image belongs to a superseded dataset.
		logging.FromContext(ctx).Info("discarding superseded chart rendering", "chart_type", in.ChartType)
		return v.store.ChartSession(ctx, sessionID), nil
	}
	return rendered, nil
}
