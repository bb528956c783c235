package core

// session.go owns the per-session workflow state: the single current
// DatasetArtifact, the last-applied summary parameters, the chart session,
// and the request tokens that guard against stale engine responses.
//
// The store restores persisted state lazily on first touch of a session id.
// A persisted payload that fails to parse is treated as "no session" and
// never surfaces as an error; corrupt state must not break the workflow.

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/datanova/workbench/internal/logging"
)

// Persister stores the serialized session payload durably.
// Load returns (nil, nil) when no payload exists for the session.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// persistedSession is the durable shape of one session's state.
type persistedSession struct {
	Artifact   *DatasetArtifact `json:"artifact"`
	LastParams *SummaryParams   `json:"lastParams,omitempty"`
}

// sessionState is the in-memory state for one session id.
// Guarded by the store mutex.
type sessionState struct {
	artifact   *DatasetArtifact
	lastParams *SummaryParams
	chart      ChartSession

	// Monotonic per-concern tokens. A commit is applied only when its
	// token is still the latest issued for that concern.
	uploadToken  uint64
	summaryToken uint64

	restored bool
}

// SessionStore owns every session's current artifact. Only Replace, Merge,
// and the token-guarded commits mutate an artifact; every read hands out a
// deep copy.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*sessionState
	persister Persister
}

// NewSessionStore creates a store backed by the given persister.
func NewSessionStore(p Persister) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*sessionState),
		persister: p,
	}
}

// state returns the in-memory state for sid, restoring persisted state on
// first touch. Caller must hold s.mu.
func (s *SessionStore) state(ctx context.Context, sid string) *sessionState {
	st, ok := s.sessions[sid]
	if !ok {
		st = &sessionState{chart: ChartSession{Phase: ChartUnselected}}
		s.sessions[sid] = st
	}
	if st.restored {
		return st
	}
	st.restored = true

	if s.persister == nil {
		return st
	}
	payload, err := s.persister.Load(ctx, sid)
	if err != nil {
		logging.FromContext(ctx).Warn("session restore failed", "error", err)
		return st
	}
	if len(payload) == 0 {
		return st
	}
	var ps persistedSession
	if err := json.Unmarshal(payload, &ps); err != nil {
		// Corrupt persisted state is equivalent to no session.
		logging.FromContext(ctx).Warn("discarding unparsable session payload", "error", err)
		return st
	}
	st.artifact = ps.Artifact
	st.lastParams = ps.LastParams
	return st
}

// persist writes the session's durable state. Persistence is best effort:
// a failed write is logged and the in-memory state remains authoritative.
func (s *SessionStore) persist(ctx context.Context, sid string, st *sessionState) {
	if s.persister == nil {
		return
	}
	payload, err := json.Marshal(persistedSession{
		Artifact:   st.artifact,
		LastParams: st.lastParams,
	})
	if err != nil {
		logging.FromContext(ctx).Error("session marshal failed", "error", err)
		return
	}
	if err := s.persister.Save(ctx, sid, payload); err != nil {
		logging.FromContext(ctx).Warn("session persist failed", "error", err)
	}
}

// Get returns a deep copy of the session's current artifact, or false when
// the session has none.
func (s *SessionStore) Get(ctx context.Context, sid string) (*DatasetArtifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if st.artifact == nil {
		return nil, false
	}
	return st.artifact.Clone(), true
}

// LastParams returns the summary parameters last applied to the session's
// artifact, or false when none were recorded.
func (s *SessionStore) LastParams(ctx context.Context, sid string) (SummaryParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if st.lastParams == nil {
		return SummaryParams{}, false
	}
	return *st.lastParams, true
}

// Replace unconditionally overwrites the session's artifact and records the
// summary parameters it was generated with. A fresh artifact discards any
// in-progress chart configuration.
func (s *SessionStore) Replace(ctx context.Context, sid string, a *DatasetArtifact, params SummaryParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	s.replaceLocked(ctx, sid, st, a, params)
}

func (s *SessionStore) replaceLocked(ctx context.Context, sid string, st *sessionState, a *DatasetArtifact, params SummaryParams) {
	st.artifact = a.Clone()
	p := params
	st.lastParams = &p
	st.chart = ChartSession{Phase: ChartUnselected}

	// The new artifact supersedes every in-flight engine response; any
	// commit still carrying an older token must fail.
	st.uploadToken++
	st.summaryToken++

	s.persist(ctx, sid, st)
}

// Merge overlays the patch's non-absent fields onto the current artifact,
// preserving fields the patch omits. Fails with ErrNoActiveSession when the
// session has no artifact.
func (s *SessionStore) Merge(ctx context.Context, sid string, patch ArtifactPatch) (*DatasetArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if st.artifact == nil {
		return nil, ErrNoActiveSession
	}
	patch.apply(st.artifact)
	s.persist(ctx, sid, st)
	return st.artifact.Clone(), nil
}

// Clear destroys the session's artifact and removes the persisted copy.
func (s *SessionStore) Clear(ctx context.Context, sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	st.artifact = nil
	st.lastParams = nil
	st.chart = ChartSession{Phase: ChartUnselected}
	st.uploadToken++
	st.summaryToken++
	if s.persister != nil {
		if err := s.persister.Delete(ctx, sid); err != nil {
			logging.FromContext(ctx).Warn("session delete failed", "error", err)
		}
	}
}

// NextUploadToken issues a new upload token for the session, superseding
// any outstanding upload.
func (s *SessionStore) NextUploadToken(ctx context.Context, sid string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	st.uploadToken++
	return st.uploadToken
}

// CommitUpload replaces the session's artifact if token is still the latest
// upload token. A superseded token returns ErrStaleToken and leaves the
// store untouched.
func (s *SessionStore) CommitUpload(ctx context.Context, sid string, token uint64, a *DatasetArtifact, params SummaryParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if token != st.uploadToken {
		return ErrStaleToken
	}
	s.replaceLocked(ctx, sid, st, a, params)
	return nil
}

// NextSummaryToken issues a new summary token for the session, superseding
// any outstanding regeneration.
func (s *SessionStore) NextSummaryToken(ctx context.Context, sid string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	st.summaryToken++
	return st.summaryToken
}

// CommitSummary merges a regeneration response and records its parameters,
// if token is still the latest summary token. A superseded token returns
// ErrStaleToken; a session without an artifact returns ErrNoActiveSession.
func (s *SessionStore) CommitSummary(ctx context.Context, sid string, token uint64, patch ArtifactPatch, params SummaryParams) (*DatasetArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if token != st.summaryToken {
		return nil, ErrStaleToken
	}
	if st.artifact == nil {
		return nil, ErrNoActiveSession
	}
	patch.apply(st.artifact)
	p := params
	st.lastParams = &p
	s.persist(ctx, sid, st)
	return st.artifact.Clone(), nil
}

// ChartSession returns the session's current chart state.
func (s *SessionStore) ChartSession(ctx context.Context, sid string) ChartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state(ctx, sid).chart
}

// SetChartSession stores the session's chart state.
func (s *SessionStore) SetChartSession(ctx context.Context, sid string, cs ChartSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(ctx, sid).chart = cs
}

// SwapChartSession stores next only while the session's chart state still
// equals prev, reporting whether the write was applied. A slow rendering
// uses this to discard its result when a reset or a new upload moved the
// chart session on in the meantime.
func (s *SessionStore) SwapChartSession(ctx context.Context, sid string, prev, next ChartSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, sid)
	if st.chart != prev {
		return false
	}
	st.chart = next
	return true
}
