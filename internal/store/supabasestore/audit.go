package supabasestore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

// WriteAuditLog inserts a best-effort audit entry. Errors are returned to the caller
// (internal/audit) rather than swallowed here — the "never abort on audit failure"
// contract is internal/audit's responsibility, not the store's.
func (c *Client) WriteAuditLog(ctx context.Context, a *model.AuditLog) error {
	var result []model.AuditLog
	_, err := c.client.From(tableAuditLog).
		Insert(a, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("WriteAuditLog", err)
}

func (c *Client) CreatePipelineRun(ctx context.Context, r *model.PipelineRun) error {
	var result []model.PipelineRun
	_, err := c.client.From(tablePipelineRuns).
		Insert(r, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreatePipelineRun", err)
}

func (c *Client) UpdatePipelineRun(ctx context.Context, r *model.PipelineRun) error {
	var result []model.PipelineRun
	_, err := c.client.From(tablePipelineRuns).
		Update(r, "", "").
		Eq("run_id", r.RunID).
		ExecuteTo(&result)
	return wrapErr("UpdatePipelineRun", err)
}
