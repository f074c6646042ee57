package workflow_test

import (
	"context"
	"testing"

	"github.com/BaSui01/synthdoc/extract"
	"github.com/BaSui01/synthdoc/testutil/mocks"
	"github.com/BaSui01/synthdoc/types"
	"github.com/BaSui01/synthdoc/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func twoStageProcess() workflow.ThoughtProcess {
	return workflow.ThoughtProcess{
		Name:        "gen",
		OutputField: "sample",
		Stages: []workflow.StageSpec{
			{
				Name:     "draft",
				Template: "Draft a <!kind!>",
				Rules: []extract.Rule{
					{Start: "<draft>", End: "</draft>", Field: "draft", Transform: extract.TransformRaw},
				},
			},
			{
				Name:     "review",
				Template: "Review <!draft!>",
				Rules: []extract.Rule{
					{Start: "<final>", End: "</final>", Field: "sample", Transform: extract.TransformRaw},
				},
			},
		},
	}
}

func newRegistry(t *testing.T, processes ...workflow.ThoughtProcess) *workflow.Registry {
	t.Helper()
	r, err := workflow.NewRegistry(processes)
	require.NoError(t, err)
	return r
}

func TestConversation_GetResponse(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"<draft>d1</draft>",
		"<final>f1</final>",
	)
	conv, err := newRegistry(t, twoStageProcess()).Conversation("gen", workflow.Deps{Provider: provider, Logger: zap.NewNop()})
	require.NoError(t, err)

	inputs := map[string]any{"kind": "invoice"}
	resp, err := conv.GetResponse(context.Background(), inputs, workflow.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "f1", resp.Wisdom)
	assert.Equal(t, types.Wisdom{"kind": "invoice", "draft": "d1", "sample": "f1"}, resp.Context)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "review", resp.Raw.Stage)
	assert.Equal(t, map[string]any{"kind": "invoice"}, inputs)

	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Draft a invoice", calls[0].Request.Messages[0].Content)
	assert.Equal(t, "Review d1", calls[1].Request.Messages[0].Content)
	// 同一次运行共享 trace id
	assert.Equal(t, calls[0].Request.TraceID, calls[1].Request.TraceID)
}

func TestConversation_StageFailureKeepsPriorContext(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponse("<draft>d1</draft>").WithFailAfter(1)
	conv, err := newRegistry(t, twoStageProcess()).Conversation("gen", workflow.Deps{Provider: provider})
	require.NoError(t, err)

	resp, err := conv.GetResponse(context.Background(), map[string]any{"kind": "invoice"}, workflow.RunOptions{})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrGenerationTransport))
	assert.Contains(t, err.Error(), "stage 2 (review) failed")

	require.NotNil(t, resp)
	assert.Empty(t, resp.Wisdom)
	assert.Equal(t, types.Wisdom{"kind": "invoice", "draft": "d1"}, resp.Context)
	require.NotNil(t, resp.Raw)
	assert.True(t, resp.Raw.Failed())
	assert.Equal(t, "Review d1", resp.Raw.Prompt)
}

func TestConversation_FreshContextPerRun(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses(
		"<draft>a</draft>", "<final>A</final>",
		"<draft>b</draft>", "<final>B</final>",
	)
	conv, err := newRegistry(t, twoStageProcess()).Conversation("gen", workflow.Deps{Provider: provider})
	require.NoError(t, err)

	first, err := conv.GetResponse(context.Background(), map[string]any{"kind": "x"}, workflow.RunOptions{})
	require.NoError(t, err)
	second, err := conv.GetResponse(context.Background(), map[string]any{"kind": "y"}, workflow.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A", first.Wisdom)
	assert.Equal(t, "B", second.Wisdom)
	assert.Equal(t, "x", first.Context["kind"])
	assert.Equal(t, "y", second.Context["kind"])
}

func TestConversation_KeepsCallerTraceID(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponses("<draft>d</draft>", "<final>f</final>")
	conv, err := newRegistry(t, twoStageProcess()).Conversation("gen", workflow.Deps{Provider: provider})
	require.NoError(t, err)

	ctx := types.WithTraceID(context.Background(), "caller-trace")
	_, err = conv.GetResponse(ctx, nil, workflow.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "caller-trace", provider.LastRequest().TraceID)
}

func TestRegistry_UnknownProcess(t *testing.T) {
	provider := mocks.NewMockProvider()
	_, err := newRegistry(t, twoStageProcess()).Conversation("nope", workflow.Deps{Provider: provider})

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrConfiguration, e.Code)
	assert.Equal(t, "nope", e.Detail(types.DetailProcess))
	assert.Equal(t, 0, provider.CallCount())
}

func TestRegistry_MissingProvider(t *testing.T) {
	_, err := newRegistry(t, twoStageProcess()).Conversation("gen", workflow.Deps{})
	assert.True(t, types.IsErrorCode(err, types.ErrConfiguration))
}

func TestNewRegistry_Errors(t *testing.T) {
	p := twoStageProcess()

	_, err := workflow.NewRegistry([]workflow.ThoughtProcess{p, p})
	assert.ErrorContains(t, err, "duplicate thought process")

	custom := workflow.ThoughtProcess{Name: "c", Stages: []workflow.StageSpec{{Name: "s", Kind: "shout"}}}
	_, err = workflow.NewRegistry([]workflow.ThoughtProcess{custom})
	assert.True(t, types.IsErrorCode(err, types.ErrConfiguration))

	invalid := workflow.ThoughtProcess{Name: "bad"}
	_, err = workflow.NewRegistry([]workflow.ThoughtProcess{invalid})
	assert.True(t, types.IsErrorCode(err, types.ErrConfiguration))
}

func TestRegistry_CustomStepKind(t *testing.T) {
	shout := func(spec workflow.StageSpec, _ string, _ workflow.Deps) (workflow.Stage, error) {
		return workflow.NewFuncStep(spec.Name, func(_ context.Context, in types.Wisdom) (map[string]any, error) {
			text, _ := in.Text("wisdom")
			return map[string]any{"loud": text + "!"}, nil
		}), nil
	}
	process := workflow.ThoughtProcess{
		Name:        "loud",
		OutputField: "loud",
		Stages: []workflow.StageSpec{
			{Name: "say", Template: "say something"},
			{Name: "shout", Kind: "shout"},
		},
	}
	r, err := workflow.NewRegistry([]workflow.ThoughtProcess{process}, workflow.WithStepKind("shout", shout))
	require.NoError(t, err)
	assert.Equal(t, []string{"loud"}, r.Names())

	provider := mocks.NewMockProvider().WithResponse("hi")
	conv, err := r.Conversation("loud", workflow.Deps{Provider: provider})
	require.NoError(t, err)
	assert.Len(t, conv.Pipeline().Stages(), 2)

	resp, err := conv.GetResponse(context.Background(), nil, workflow.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi!", resp.Wisdom)
	// 普通步骤不产生生成结果
	assert.Len(t, resp.Results, 1)
}
