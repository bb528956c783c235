package core

// upload.go coordinates dataset uploads: validate the candidate file,
// hold the session's single upload slot, relay the file to the analysis
// engine, and commit the resulting artifact.
//
// Failure at any point leaves the session store untouched; a stale artifact,
// if any, remains visible and usable.

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/datanova/workbench/internal/logging"
)

// acceptedExtension is the only file extension the workflow analyzes.
const acceptedExtension = ".csv"

// UploadCoordinator validates and serializes dataset uploads.
type UploadCoordinator struct {
	engine      Engine
	store       *SessionStore
	gate        *UploadGate
	maxFileSize int64
}

// NewUploadCoordinator creates a coordinator. maxFileSize of 0 disables the
// size check (the transport layer still caps the request body).
func NewUploadCoordinator(engine Engine, store *SessionStore, gate *UploadGate, maxFileSize int64) *UploadCoordinator {
	return &UploadCoordinator{
		engine:      engine,
		store:       store,
		gate:        gate,
		maxFileSize: maxFileSize,
	}
}

// Upload validates the file, sends it to the analysis engine, and replaces
// the session's artifact with the normalized result. size is the declared
// file size in bytes, or 0 when unknown.
//
// Preconditions are checked before any network attempt: the file must be
// present and named with the accepted extension. At most one upload is in
// flight per session; a second call is rejected, not queued.
func (c *UploadCoordinator) Upload(ctx context.Context, sessionID, fileName string, size int64, file io.Reader, params *SummaryParams) (*DatasetArtifact, error) {
	if fileName == "" || file == nil {
		return nil, ErrNoFileProvided
	}
	if !strings.EqualFold(filepath.Ext(fileName), acceptedExtension) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, fileName)
	}
	if c.maxFileSize > 0 && size > c.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, c.maxFileSize)
	}

	effective := DefaultSummaryParams()
	if params != nil {
		if err := params.Validate(); err != nil {
			return nil, err
		}
		effective = *params
	}

	if err := c.gate.Acquire(ctx, sessionID); err != nil {
		return nil, err
	}
	defer c.gate.Release(sessionID)

	token := c.store.NextUploadToken(ctx, sessionID)
	start := time.Now()

	artifact, err := c.engine.Analyze(ctx, fileName, file, effective)
	if err != nil {
		return nil, err
	}

	if err := c.store.CommitUpload(ctx, sessionID, token, artifact, effective); err != nil {
		// A newer upload superseded this one; its response wins.
		logging.FromContext(ctx).Info("discarding superseded upload response",
			"file", fileName, "token", token)
		return nil, err
	}

	logging.FromContext(ctx).Info("dataset analyzed",
		"file", fileName,
		"rows", artifact.RowCount,
		"columns", artifact.ColumnCount,
		"duration", time.Since(start))

	return artifact, nil
}
