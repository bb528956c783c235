package core

// service.go wires the workflow components together behind a single entry
// point. Handlers talk to Service; Service owns the session store, the
// upload gate, and the per-concern coordinators.

import (
	"context"
	"io"
	"time"
)

// Engine is the remote analysis service. Implementations live outside this
// package; core only decides when it is safe to call it.
type Engine interface {
	// Analyze uploads a file and returns the normalized artifact.
	Analyze(ctx context.Context, fileName string, file io.Reader, params SummaryParams) (*DatasetArtifact, error)

	// Regenerate re-requests the summary for an existing artifact under new
	// parameters and returns the fields the response carried.
	Regenerate(ctx context.Context, artifact *DatasetArtifact, params SummaryParams) (ArtifactPatch, error)

	// Visualize renders a validated chart request and returns an opaque
	// image reference (URL or inline-encoded image).
	Visualize(ctx context.Context, artifact *DatasetArtifact, req ChartRequest) (string, error)
}

// ServiceConfig holds the tunables for the workflow service.
type ServiceConfig struct {
	// MaxFileSize is the upload size limit in bytes; 0 disables the check.
	MaxFileSize int64

	// MaxConcurrentUploads is the global ceiling on parallel uploads.
	MaxConcurrentUploads int

	// UploadWait is how long an upload waits for a global slot.
	UploadWait time.Duration
}

// Service is the main entry point for all workflow operations.
type Service struct {
	store     *SessionStore
	gate      *UploadGate
	uploads   *UploadCoordinator
	summaries *SummaryRegenerator
	charts    *VisualizationConfigurator
}

// NewService creates a fully wired workflow service.
func NewService(engine Engine, persister Persister, cfg ServiceConfig) *Service {
	store := NewSessionStore(persister)
	gate := NewUploadGate(cfg.MaxConcurrentUploads, cfg.UploadWait)

	return &Service{
		store:     store,
		gate:      gate,
		uploads:   NewUploadCoordinator(engine, store, gate, cfg.MaxFileSize),
		summaries: NewSummaryRegenerator(engine, store),
		charts:    NewVisualizationConfigurator(engine, store),
	}
}

// Store exposes the session store for read access in handlers and tests.
func (s *Service) Store() *SessionStore {
	return s.store
}

// Upload validates and analyzes a new dataset for the session.
func (s *Service) Upload(ctx context.Context, sessionID, fileName string, size int64, file io.Reader, params *SummaryParams) (*DatasetArtifact, error) {
	return s.uploads.Upload(ctx, sessionID, fileName, size, file, params)
}

// Artifact returns the session's current artifact snapshot.
func (s *Service) Artifact(ctx context.Context, sessionID string) (*DatasetArtifact, bool) {
	return s.store.Get(ctx, sessionID)
}

// LastParams returns the summary parameters last applied to the artifact.
func (s *Service) LastParams(ctx context.Context, sessionID string) (SummaryParams, bool) {
	return s.store.LastParams(ctx, sessionID)
}

// ClearSession destroys the session's artifact and chart state.
func (s *Service) ClearSession(ctx context.Context, sessionID string) {
	s.store.Clear(ctx, sessionID)
}

// Regenerate re-requests the summary under new parameters.
func (s *Service) Regenerate(ctx context.Context, sessionID string, params SummaryParams) (*DatasetArtifact, error) {
	return s.summaries.Regenerate(ctx, sessionID, params)
}

// SelectChart picks a chart type for the session.
func (s *Service) SelectChart(ctx context.Context, sessionID string, t ChartType) (ChartSession, error) {
	return s.charts.Select(ctx, sessionID, t)
}

// GenerateChart validates the configuration and renders a chart.
func (s *Service) GenerateChart(ctx context.Context, sessionID string, in ChartInput) (ChartSession, error) {
	return s.charts.Generate(ctx, sessionID, in)
}

// ResetChart discards the session's chart configuration.
func (s *Service) ResetChart(ctx context.Context, sessionID string) ChartSession {
	return s.charts.Reset(ctx, sessionID)
}

// ChartState returns the session's current chart session.
func (s *Service) ChartState(ctx context.Context, sessionID string) ChartSession {
	return s.store.ChartSession(ctx, sessionID)
}

// ExportArtifact serializes the session's artifact in the given format and
// returns the bytes, content type, and download file name.
func (s *Service) ExportArtifact(ctx context.Context, sessionID string, format ExportFormat) ([]byte, string, string, error) {
	artifact, ok := s.store.Get(ctx, sessionID)
	if !ok {
		return nil, "", "", ErrNoActiveSession
	}
	data, contentType, err := Export(artifact, format)
	if err != nil {
		return nil, "", "", err
	}
	return data, contentType, ExportFileName(artifact.FileName, format), nil
}

// ExportChart returns the rendered chart's image reference and download
// name. Fails when no chart has been rendered for the session.
func (s *Service) ExportChart(ctx context.Context, sessionID string) (imageRef, fileName string, err error) {
	artifact, ok := s.store.Get(ctx, sessionID)
	if !ok {
		return "", "", ErrNoActiveSession
	}
	cs := s.store.ChartSession(ctx, sessionID)
	if cs.Phase != ChartRendered || cs.ImageRef == "" {
		return "", "", ErrNoRenderedChart
	}
	return cs.ImageRef, ChartDownloadName(artifact.FileName, cs.ChartType), nil
}

// Ask answers a free-form question against the session's artifact.
func (s *Service) Ask(ctx context.Context, sessionID, question string) string {
	artifact, _ := s.store.Get(ctx, sessionID)
	return AnswerQuestion(artifact, question)
}

// UploadStatus reports the upload gate state for health checks.
func (s *Service) UploadStatus() UploadGateStatus {
	return s.gate.Status()
}

// WaitForUploads blocks until in-flight uploads drain, for graceful shutdown.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.gate.WaitForDrain(ctx)
}
