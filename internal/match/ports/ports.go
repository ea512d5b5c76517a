// Package ports defines shared interfaces for the match module.
// Interfaces are placed here when consumed by multiple packages to avoid
// duplication.
package ports

import (
	"context"
	"log/slog"

	id "renalmatch/pkg/domain"
	"renalmatch/pkg/attrs"
	"renalmatch/pkg/platform/audit"

	"renalmatch/internal/match/session"
)

//go:generate mockgen -destination=../../../mocks/sessionstore/mocks.go -package=sessionstore renalmatch/internal/match/ports SessionStore

// SessionStore persists matching sessions.
type SessionStore interface {
	// Create stores a new session. Fails with sentinel.ErrConflict if the
	// ID is already taken.
	Create(ctx context.Context, sess *session.Session) error

	// Get retrieves a session by ID. Fails with sentinel.ErrNotFound when
	// the session does not exist.
	Get(ctx context.Context, sessionID id.SessionID) (*session.Session, error)

	// Update replaces a stored session wholesale. The engine serializes
	// writers per session, so last-write-wins is safe here.
	Update(ctx context.Context, sess *session.Session) error

	// Delete removes a session, resetting the pair's state entirely.
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// AuditPublisher emits audit events for committed state transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit is a shared helper for recording audit events in the match module.
// It logs to the structured logger and emits to the audit publisher if
// available. Emission failures are logged, never returned: the state
// transition has already committed.
//
// Fields the event struct does not carry explicitly are lifted from the
// attribute list, so callers annotate once and both the log line and the
// published event agree.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, attrList ...any) {
	if event.Reason == "" {
		event.Reason = ExtractReason(attrList)
	}
	if event.Score == nil {
		if score, ok := attrs.ExtractInt(attrList, "score"); ok {
			event.Score = &score
		}
	}

	args := append(attrList,
		"event", event.Action,
		"session_id", event.SessionID,
		"log_type", "audit",
	)

	if logger != nil {
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"event", event.Action,
			"session_id", event.SessionID,
			"error", err,
		)
	}
}

// ExtractReason pulls a reason attribute out of a k/v list for audit sinks.
func ExtractReason(attrList []any) string {
	return attrs.ExtractString(attrList, "reason")
}
