// Package orchestrator runs the discovery pipeline's ordered step graph: fetch
// adapters, detectors, scoring, identity resolution, and confidence classification,
// in the fixed order spec.md §4.11 names. Each step is HARD (a failure aborts the run)
// or SOFT (a failure is recorded and the walk continues).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// StepFunc does one pipeline step's work and returns tallies for the run record.
type StepFunc func(ctx context.Context) (counts map[string]int, err error)

// Step is one named, ordered unit of pipeline work.
type Step struct {
	Name     string
	Hardness model.StepHardness
	Run      StepFunc
}

// Pipeline executes an ordered []Step and persists a model.PipelineRun as it goes, so
// a crash mid-run leaves a resumable record of exactly how far it got.
type Pipeline struct {
	store store.AuditStore
}

// New returns a Pipeline backed by s.
func New(s store.AuditStore) *Pipeline {
	return &Pipeline{store: s}
}

// Run executes every step in order. A HARD step's failure stops the walk immediately
// and marks the run failed; a SOFT step's failure is recorded and the walk continues.
// The overall status is "ok" only if every step succeeded, "partial" if every failure
// was SOFT, and "failed" if any HARD step failed.
func (p *Pipeline) Run(ctx context.Context, steps []Step) (model.PipelineRun, error) {
	run := model.PipelineRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    model.RunOK,
	}

	if err := p.store.CreatePipelineRun(ctx, &run); err != nil {
		return run, fmt.Errorf("orchestrator: create pipeline run: %w", err)
	}

	anySoftFailure := false

	for _, step := range steps {
		startedAt := time.Now().UTC()
		counts, err := step.Run(ctx)
		result := model.StepResult{
			Name:      step.Name,
			Hardness:  step.Hardness,
			StartedAt: startedAt,
			EndedAt:   time.Now().UTC(),
			Counts:    counts,
		}

		if err != nil {
			result.Status = model.StepFailed
			result.Error = err.Error()
			run.Steps = append(run.Steps, result)

			if step.Hardness == model.Hard {
				run.Status = model.RunFailed
				p.persist(ctx, &run)
				return run, nil
			}
			anySoftFailure = true
		} else {
			result.Status = model.StepOK
			run.Steps = append(run.Steps, result)
		}

		p.persist(ctx, &run)
	}

	if anySoftFailure {
		run.Status = model.RunPartial
	}
	ended := time.Now().UTC()
	run.EndedAt = &ended
	p.persist(ctx, &run)

	return run, nil
}

// persist commits the run's current state. A failure here is logged, not returned:
// the commit-per-step boundary exists for resumability, and a write hiccup must not
// abort a pipeline that is otherwise progressing correctly.
func (p *Pipeline) persist(ctx context.Context, run *model.PipelineRun) {
	if err := p.store.UpdatePipelineRun(ctx, run); err != nil {
		slog.Warn("orchestrator: failed to persist pipeline run state", "run_id", run.RunID, "error", err)
	}
}
