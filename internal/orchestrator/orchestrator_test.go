package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func TestRunAllStepsOK(t *testing.T) {
	s := memstore.New()
	p := New(s)

	var order []string
	steps := []Step{
		{Name: "fetch", Hardness: model.Soft, Run: func(ctx context.Context) (map[string]int, error) {
			order = append(order, "fetch")
			return map[string]int{"rows": 10}, nil
		}},
		{Name: "gap_detection", Hardness: model.Hard, Run: func(ctx context.Context) (map[string]int, error) {
			order = append(order, "gap_detection")
			return map[string]int{"gaps_created": 3}, nil
		}},
	}

	run, err := p.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, run.Status)
	assert.Equal(t, []string{"fetch", "gap_detection"}, order)
	require.Len(t, run.Steps, 2)
	assert.Equal(t, model.StepOK, run.Steps[0].Status)
	assert.Equal(t, 3, run.Steps[1].Counts["gaps_created"])
	require.NotNil(t, run.EndedAt)
}

func TestRunHardFailureStopsWalk(t *testing.T) {
	s := memstore.New()
	p := New(s)

	ran := map[string]bool{}
	steps := []Step{
		{Name: "fetch", Hardness: model.Soft, Run: func(ctx context.Context) (map[string]int, error) {
			ran["fetch"] = true
			return nil, nil
		}},
		{Name: "gap_detection", Hardness: model.Hard, Run: func(ctx context.Context) (map[string]int, error) {
			ran["gap_detection"] = true
			return nil, errors.New("db unreachable")
		}},
		{Name: "scoring", Hardness: model.Hard, Run: func(ctx context.Context) (map[string]int, error) {
			ran["scoring"] = true
			return nil, nil
		}},
	}

	run, err := p.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.True(t, ran["fetch"])
	assert.True(t, ran["gap_detection"])
	assert.False(t, ran["scoring"])
	require.Len(t, run.Steps, 2)
	assert.Equal(t, model.StepFailed, run.Steps[1].Status)
	assert.Equal(t, "db unreachable", run.Steps[1].Error)
}

func TestRunSoftFailureContinuesAndMarksPartial(t *testing.T) {
	s := memstore.New()
	p := New(s)

	ran := map[string]bool{}
	steps := []Step{
		{Name: "spoofing", Hardness: model.Soft, Run: func(ctx context.Context) (map[string]int, error) {
			ran["spoofing"] = true
			return nil, errors.New("timeout")
		}},
		{Name: "sts", Hardness: model.Soft, Run: func(ctx context.Context) (map[string]int, error) {
			ran["sts"] = true
			return map[string]int{"events": 1}, nil
		}},
	}

	run, err := p.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, model.RunPartial, run.Status)
	assert.True(t, ran["spoofing"])
	assert.True(t, ran["sts"])
	require.Len(t, run.Steps, 2)
	assert.Equal(t, model.StepFailed, run.Steps[0].Status)
	assert.Equal(t, model.StepOK, run.Steps[1].Status)
}

func TestRunEmptyStepListIsOK(t *testing.T) {
	s := memstore.New()
	p := New(s)
	run, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.RunOK, run.Status)
	assert.Empty(t, run.Steps)
}
