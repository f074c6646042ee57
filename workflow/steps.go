package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/synthdoc/extract"
	"github.com/BaSui01/synthdoc/types"
)

// StepFunc 普通步骤函数，返回要合并进上下文的字段
type StepFunc func(ctx context.Context, in types.Wisdom) (map[string]any, error)

// FuncStep 函数步骤实现
type FuncStep struct {
	name string
	fn   StepFunc
}

// NewFuncStep 创建函数步骤
func NewFuncStep(name string, fn StepFunc) *FuncStep {
	return &FuncStep{
		name: name,
		fn:   fn,
	}
}

func (s *FuncStep) Name() string {
	return s.name
}

// Execute 运行函数并合并其输出；非 types.Error 的错误包装为 STAGE_FAILED
func (s *FuncStep) Execute(ctx context.Context, in types.Wisdom, _ RunOptions) (*StageOutput, error) {
	delta, err := s.fn(ctx, in)
	if err != nil {
		if _, ok := types.AsError(err); ok {
			return nil, err
		}
		return nil, types.NewError(types.ErrStageFailed, fmt.Sprintf("step %s failed", s.name)).
			WithCause(err).
			WithDetail(types.DetailStage, s.name)
	}
	return &StageOutput{Wisdom: in.Merge(delta)}, nil
}

// newJSONStep 将 from 字段的文本解析为 JSON 并写入 to 字段
func newJSONStep(spec StageSpec) *FuncStep {
	from, to := spec.Params["from"], spec.Params["to"]
	return NewFuncStep(spec.Name, func(_ context.Context, in types.Wisdom) (map[string]any, error) {
		text, ok := in.Text(from)
		if !ok {
			return nil, fmt.Errorf("field %q not present", from)
		}
		if text == extract.MissingInResponse {
			return nil, fmt.Errorf("field %q was missing in the generator response", from)
		}
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &v); err != nil {
			return nil, fmt.Errorf("field %q is not valid JSON: %w", from, err)
		}
		return map[string]any{to: v}, nil
	})
}

// newCopyStep 将 from 字段复制到 to 字段
func newCopyStep(spec StageSpec) *FuncStep {
	from, to := spec.Params["from"], spec.Params["to"]
	return NewFuncStep(spec.Name, func(_ context.Context, in types.Wisdom) (map[string]any, error) {
		v, ok := in[from]
		if !ok {
			return nil, fmt.Errorf("field %q not present", from)
		}
		return map[string]any{to: v}, nil
	})
}
