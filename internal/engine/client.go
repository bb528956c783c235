// Package engine is the HTTP client for the remote DataNova analysis
// service. It owns the wire formats and the defensive normalization of
// engine payloads into strict artifacts; callers never see partial data.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/datanova/workbench/internal/core"
)

// Client talks to the analysis engine over HTTP.
type Client struct {
	baseURL string
	http    *http.Client

	// now is stubbed in tests for deterministic artifact timestamps.
	now func() time.Time
}

// NewClient creates a client for the engine at baseURL. Every call shares
// one timeout; the engine can take a while on large files.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// payload is the loosely-typed analysis response. Pointer and slice fields
// distinguish absent from empty so normalization can default correctly.
type payload struct {
	Columns            []string        `json:"columns"`
	RowCount           *int            `json:"row_count"`
	NumericColumns     []string        `json:"numeric_columns"`
	CategoricalColumns []string        `json:"categorical_columns"`
	Summary            *string         `json:"summary"`
	Insights           []string        `json:"insights"`
	Resources          []core.Resource `json:"resources"`

	// Head may legitimately be absent or malformed (non-array); it is
	// decoded leniently and coerced during normalization.
	Head json.RawMessage `json:"head"`

	Stats map[string]any `json:"stats"`
}

// visualizeResponse carries the rendered chart reference. The engine
// returns either a URL or an inline base64 image.
type visualizeResponse struct {
	ImageURL    string `json:"image_url"`
	ImageBase64 string `json:"image_base64"`
}

// Analyze uploads the file as multipart form data and returns the
// normalized artifact. The summary parameters ride along as text parts.
func (c *Client) Analyze(ctx context.Context, fileName string, file io.Reader, params core.SummaryParams) (*core.DatasetArtifact, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}
	_ = mw.WriteField("length", string(params.Length))
	_ = mw.WriteField("tone", string(params.Tone))
	_ = mw.WriteField("audience", string(params.Audience))
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	var p payload
	if err := c.post(ctx, "/analyze", mw.FormDataContentType(), &body, &p); err != nil {
		return nil, err
	}
	return c.normalizeArtifact(fileName, p), nil
}

// regenerateRequest carries the existing artifact as context so the engine
// refines the same dataset instead of recomputing from raw data.
type regenerateRequest struct {
	ExistingData *core.DatasetArtifact `json:"existingData"`
	Length       core.SummaryLength    `json:"length"`
	Tone         core.SummaryTone      `json:"tone"`
	Audience     core.SummaryAudience  `json:"audience"`
}

// Regenerate re-requests the summary under new parameters and returns the
// fields the response carried, for merging into the session's artifact.
func (c *Client) Regenerate(ctx context.Context, artifact *core.DatasetArtifact, params core.SummaryParams) (core.ArtifactPatch, error) {
	body, err := json.Marshal(regenerateRequest{
		ExistingData: artifact,
		Length:       params.Length,
		Tone:         params.Tone,
		Audience:     params.Audience,
	})
	if err != nil {
		return core.ArtifactPatch{}, fmt.Errorf("marshal regenerate request: %w", err)
	}

	var p payload
	if err := c.post(ctx, "/analyze", "application/json", bytes.NewReader(body), &p); err != nil {
		return core.ArtifactPatch{}, err
	}
	return normalizePatch(p), nil
}

// visualizeRequest is the chart rendering request body.
type visualizeRequest struct {
	Data      *core.DatasetArtifact `json:"data"`
	ChartType core.ChartType        `json:"chart_type"`
	XAxis     string                `json:"x_axis"`
	YAxis     string                `json:"y_axis,omitempty"`
	Limit     int                   `json:"limit"`
	Color     string                `json:"color,omitempty"`
	Title     string                `json:"title,omitempty"`
	ShowGrid  bool                  `json:"show_grid"`
}

// Visualize renders a validated chart request and returns an opaque image
// reference: a URL, or a data URI when the engine inlines the image.
func (c *Client) Visualize(ctx context.Context, artifact *core.DatasetArtifact, req core.ChartRequest) (string, error) {
	body, err := json.Marshal(visualizeRequest{
		Data:      artifact,
		ChartType: req.ChartType,
		XAxis:     req.XAxis,
		YAxis:     req.YAxis,
		Limit:     req.RowLimit,
		Color:     req.Style.Color,
		Title:     req.Style.Title,
		ShowGrid:  req.Style.ShowGrid,
	})
	if err != nil {
		return "", fmt.Errorf("marshal visualize request: %w", err)
	}

	var vr visualizeResponse
	if err := c.post(ctx, "/visualize", "application/json", bytes.NewReader(body), &vr); err != nil {
		return "", err
	}

	switch {
	case vr.ImageURL != "":
		return vr.ImageURL, nil
	case vr.ImageBase64 != "":
		if strings.HasPrefix(vr.ImageBase64, "data:") {
			return vr.ImageBase64, nil
		}
		return "data:image/png;base64," + vr.ImageBase64, nil
	default:
		return "", fmt.Errorf("%w: no image reference in visualize response", core.ErrMalformedResponse)
	}
}

// post sends a request and decodes the JSON response into out. Transport
// failures map to ErrEngineUnavailable, non-2xx statuses to an engine
// status error, and undecodable bodies to ErrMalformedResponse.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", core.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the log line, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", core.ErrEngineStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}
	return nil
}
