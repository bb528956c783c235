// Package core provides the business logic for the dataset workflow.
//
// This package is the heart of the workbench gateway, containing all domain
// logic independent of any UI or transport layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Session Store: Owns the single current [DatasetArtifact] per browser
//     session, restores it from the persister lazily, and guards every
//     mutation with per-concern request tokens.
//   - Upload Coordinator: Validates a candidate file, holds the single
//     in-flight upload slot for the session, relays the file to the analysis
//     engine, and commits the normalized artifact.
//   - Visualization Configurator: Validates chart configuration against the
//     artifact's column classification before any engine call, and tracks the
//     chart session state machine.
//   - Summary Regenerator: Re-requests the summary under new stylistic
//     parameters, short-circuiting on cached parameters and collapsing
//     concurrent identical requests into one engine call.
//   - Export Serializer: Pure functions turning the current artifact into
//     downloadable byte streams.
//
// # Session Lifecycle
//
// An artifact is created only by a successful upload, merged in place only by
// a successful regeneration, and destroyed only by an explicit clear or a
// subsequent upload. It survives process restarts through the persister.
//
// A stale engine response (one whose request token has been superseded by a
// newer upload or regeneration) is discarded, never applied.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - UPL001-UPL005: Upload errors (file type, concurrency, size)
//   - VIS001-VIS004: Chart validation errors (axes, columns, types)
//   - SUM001-SUM002: Summary regeneration errors
//   - SES001: Session errors (no active dataset)
//   - ENG001-ENG005: Analysis engine errors (transport, malformed payloads)
package core
