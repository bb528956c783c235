package web

// handlers_chart.go: chart configuration and generation endpoints.

import (
	"encoding/json"
	"net/http"

	"github.com/datanova/workbench/internal/core"
)

// handleChartTypes lists the supported chart types and their axis
// requirements for clients building a configuration UI.
func (s *Server) handleChartTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"types": core.ChartTypes()})
}

type chartSelectRequest struct {
	ChartType string `json:"chartType"`
}

// handleChartSelect picks a chart type and moves the chart session into
// the configuring phase.
func (s *Server) handleChartSelect(w http.ResponseWriter, r *http.Request) {
	var req chartSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, &core.ValidationError{Reason: core.UnsupportedChart})
		return
	}

	cs, err := s.service.SelectChart(r.Context(), sessionID(r.Context()), core.ChartType(req.ChartType))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cs)
}

// chartGenerateRequest is the flat wire shape of a chart configuration.
type chartGenerateRequest struct {
	ChartType string `json:"chartType"`
	XAxis     string `json:"xAxis"`
	YAxis     string `json:"yAxis"`
	RowLimit  int    `json:"rowLimit"`
	Color     string `json:"color"`
	Title     string `json:"title"`
	ShowGrid  bool   `json:"showGrid"`
}

// handleChartGenerate validates the configuration against the artifact's
// column classification and, when valid, renders the chart via the engine.
// The response carries the chart session in its new phase.
func (s *Server) handleChartGenerate(w http.ResponseWriter, r *http.Request) {
	var req chartGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, &core.ValidationError{Reason: core.UnsupportedChart})
		return
	}

	in := core.ChartInput{
		ChartType: core.ChartType(req.ChartType),
		XAxis:     req.XAxis,
		YAxis:     req.YAxis,
		RowLimit:  req.RowLimit,
		Style: core.ChartStyle{
			Color:    req.Color,
			Title:    req.Title,
			ShowGrid: req.ShowGrid,
		},
	}

	cs, err := s.service.GenerateChart(r.Context(), sessionID(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cs)
}

// handleChartReset discards the chart session.
func (s *Server) handleChartReset(w http.ResponseWriter, r *http.Request) {
	cs := s.service.ResetChart(r.Context(), sessionID(r.Context()))
	writeJSON(w, r, http.StatusOK, cs)
}
