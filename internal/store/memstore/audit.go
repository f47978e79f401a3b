package memstore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) WriteAuditLog(ctx context.Context, a *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.AuditID == "" {
		a.AuditID = newID()
	}
	s.auditLog = append(s.auditLog, *a)
	return nil
}

// AuditLogs is a test helper exposing every recorded entry in write order.
func (s *Store) AuditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditLog, len(s.auditLog))
	copy(out, s.auditLog)
	return out
}

func (s *Store) CreatePipelineRun(ctx context.Context, r *model.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.RunID == "" {
		r.RunID = newID()
	}
	s.pipelineRuns[r.RunID] = *r
	return nil
}

func (s *Store) UpdatePipelineRun(ctx context.Context, r *model.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineRuns[r.RunID] = *r
	return nil
}
