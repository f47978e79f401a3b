// Package audit provides best-effort, non-blocking recording of every
// detector, scoring, identity-merge, and pipeline action to the audit_log
// table. It mirrors the teacher's SessionAuditor: callers never wait on the
// write, and a failed write is logged, never returned as an error.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Logger persists audit entries without blocking the caller.
type Logger struct {
	store store.AuditStore
}

// New returns a Logger backed by the given store.
func New(s store.AuditStore) *Logger {
	return &Logger{store: s}
}

// Log records one action. It returns immediately; the write happens on its
// own goroutine with a fresh, detached context so a caller's context
// cancellation (e.g. an HTTP request finishing) cannot drop the entry.
func (l *Logger) Log(actor, action, entityType, entityID string, detail map[string]any) {
	if l == nil || l.store == nil {
		return
	}

	entry := &model.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.store.WriteAuditLog(ctx, entry); err != nil {
			slog.Error("audit: failed to persist entry",
				"actor", actor,
				"action", action,
				"entity_type", entityType,
				"entity_id", entityID,
				"error", err,
			)
		}
	}()
}

// LogMerge is a convenience wrapper for identity-merge operations, the one
// action type that must carry a before/after snapshot for reversal.
func (l *Logger) LogMerge(actor, survivorID, absorbedID string, rewrites []model.MergeTableRewrite) {
	tables := make([]string, len(rewrites))
	rows := 0
	for i, r := range rewrites {
		tables[i] = r.Table
		rows += r.RowCount
	}
	l.Log(actor, "vessel_merge", "vessel", survivorID, map[string]any{
		"absorbed_vessel_id": absorbedID,
		"rewritten_tables":   tables,
		"rewritten_rows":     rows,
	})
}
