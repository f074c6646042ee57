package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/BaSui01/synthdoc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterStep(name, from, to string, calls *int) *FuncStep {
	return NewFuncStep(name, func(_ context.Context, in types.Wisdom) (map[string]any, error) {
		*calls++
		base := 0
		if from != "" {
			base = in[from].(int)
		}
		return map[string]any{to: base + 1}, nil
	})
}

func TestPipeline_ThreadsContext(t *testing.T) {
	var calls int
	p := NewPipeline("xyz",
		counterStep("x", "", "x", &calls),
		counterStep("y", "x", "y", &calls),
		counterStep("z", "y", "z", &calls),
	)

	res, err := p.Run(context.Background(), types.Wisdom{"seed": "s"}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, types.Wisdom{"seed": "s", "x": 1, "y": 2, "z": 3}, res.Wisdom)
	assert.Equal(t, 3, calls)
	assert.Empty(t, res.FailedStage)
	assert.Nil(t, res.Last())
}

func TestPipeline_ShortCircuits(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	third := false

	p := NewPipeline("xyz",
		counterStep("x", "", "x", &calls),
		NewFuncStep("y", func(context.Context, types.Wisdom) (map[string]any, error) {
			return nil, boom
		}),
		NewFuncStep("z", func(context.Context, types.Wisdom) (map[string]any, error) {
			third = true
			return nil, nil
		}),
	)

	res, err := p.Run(context.Background(), nil, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage 2 (y) failed")
	assert.True(t, types.IsErrorCode(err, types.ErrStageFailed))

	assert.False(t, third, "stage after the failure must not run")
	assert.Equal(t, "y", res.FailedStage)
	// 失败 stage 之前的上下文
	assert.Equal(t, types.Wisdom{"x": 1}, res.Wisdom)
}

func TestPipeline_DoesNotMutateInitial(t *testing.T) {
	var calls int
	initial := types.Wisdom{"seed": "s"}
	p := NewPipeline("one", counterStep("x", "", "x", &calls))

	_, err := p.Run(context.Background(), initial, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.Wisdom{"seed": "s"}, initial)
}

func TestPipeline_Cancelled(t *testing.T) {
	var calls int
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline("xyz", counterStep("x", "", "x", &calls))
	res, err := p.Run(ctx, nil, RunOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "x", res.FailedStage)
}

type nilStage struct{}

func (nilStage) Name() string { return "nil" }
func (nilStage) Execute(context.Context, types.Wisdom, RunOptions) (*StageOutput, error) {
	return nil, nil
}

func TestPipeline_NilOutputFails(t *testing.T) {
	_, err := NewPipeline("p", nilStage{}).Run(context.Background(), nil, RunOptions{})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrStageFailed))
}

func TestPipeline_Empty(t *testing.T) {
	res, err := NewPipeline("empty").Run(context.Background(), types.Wisdom{"a": 1}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.Wisdom{"a": 1}, res.Wisdom)
}

func TestPipeline_StagesCopy(t *testing.T) {
	p := NewPipeline("p", nilStage{})
	stages := p.Stages()
	stages[0] = nil
	assert.NotNil(t, p.Stages()[0])
	assert.Equal(t, "p", p.Name())
}
