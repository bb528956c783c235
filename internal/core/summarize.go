package core

// summarize.go re-requests the summary for the current artifact under new
// stylistic parameters. Re-selecting the last-applied parameters is free:
// the cached artifact is returned without an engine call. Concurrent
// identical requests collapse into a single engine call via singleflight.
//
// The engine uses the existing artifact as context rather than recomputing
// from raw data, so the request carries the artifact alongside the params.

import (
	"context"
	"errors"
	"fmt"

	"github.com/datanova/workbench/internal/logging"
	"golang.org/x/sync/singleflight"
)

// SummaryRegenerator regenerates summaries with parameter-diff caching and
// request de-duplication.
type SummaryRegenerator struct {
	engine Engine
	store  *SessionStore
	group  singleflight.Group
}

// NewSummaryRegenerator creates a regenerator.
func NewSummaryRegenerator(engine Engine, store *SessionStore) *SummaryRegenerator {
	return &SummaryRegenerator{engine: engine, store: store}
}

// Regenerate returns the session's artifact with a summary generated under
// params. When params equals the last-applied parameters and a summary is
// cached, the current artifact is returned with no external call.
//
// Failure leaves the artifact and the last-applied parameters unchanged.
func (r *SummaryRegenerator) Regenerate(ctx context.Context, sessionID string, params SummaryParams) (*DatasetArtifact, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summary params: %w", err)
	}

	artifact, ok := r.store.Get(ctx, sessionID)
	if !ok {
		return nil, ErrNoActiveSession
	}

	if last, ok := r.store.LastParams(ctx, sessionID); ok && last == params && artifact.Summary != "" {
		logging.FromContext(ctx).Debug("summary params unchanged, returning cached artifact")
		return artifact, nil
	}

	key := fmt.Sprintf("%s|%s|%s|%s", sessionID, params.Length, params.Tone, params.Audience)
	v, err, shared := r.group.Do(key, func() (any, error) {
		token := r.store.NextSummaryToken(ctx, sessionID)

		patch, err := r.engine.Regenerate(ctx, artifact, params)
		if err != nil {
			return nil, fmt.Errorf("regeneration failed: %w", err)
		}

		merged, err := r.store.CommitSummary(ctx, sessionID, token, patch, params)
		if err != nil {
			if errors.Is(err, ErrStaleToken) {
				// A newer regeneration superseded this one; hand back the
				// current artifact instead of applying a stale response.
				logging.FromContext(ctx).Info("discarding superseded regeneration response", "token", token)
				if current, ok := r.store.Get(ctx, sessionID); ok {
					return current, nil
				}
			}
			return nil, err
		}
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.FromContext(ctx).Debug("regeneration shared with concurrent identical request")
	}
	return v.(*DatasetArtifact), nil
}
