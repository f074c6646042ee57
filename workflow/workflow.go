package workflow

import (
	"context"
	"fmt"

	"github.com/BaSui01/synthdoc/types"
)

// Pipeline 顺序流水线
// 每个 stage 接收上一个 stage 产生的上下文；任一 stage 失败即停止，后续 stage 不再执行。
type Pipeline struct {
	name   string
	stages []Stage
}

// NewPipeline 创建流水线
func NewPipeline(name string, stages ...Stage) *Pipeline {
	return &Pipeline{
		name:   name,
		stages: stages,
	}
}

// RunResult 流水线运行结果
type RunResult struct {
	// Wisdom 成功时为最终上下文；失败时为失败 stage 之前的上下文
	Wisdom types.Wisdom
	// FailedStage 失败的 stage 名称，成功时为空
	FailedStage string
	// Results 按执行顺序排列的生成结果（包含失败的那一次）
	Results []*GenerationResult
}

// Last returns the most recent generation result, or nil.
func (r *RunResult) Last() *GenerationResult {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return r.Results[len(r.Results)-1]
}

// Run 执行流水线
// 按顺序执行每个 stage，将前一 stage 的输出上下文作为下一 stage 的输入
func (p *Pipeline) Run(ctx context.Context, initial types.Wisdom, opts RunOptions) (*RunResult, error) {
	current := initial.Clone()
	res := &RunResult{Wisdom: current}

	for i, stage := range p.stages {
		// 检查上下文是否已取消
		select {
		case <-ctx.Done():
			res.FailedStage = stage.Name()
			return res, fmt.Errorf("stage %d (%s) not started: %w", i+1, stage.Name(), ctx.Err())
		default:
		}

		out, err := stage.Execute(ctx, current, opts)
		if out != nil && out.Result != nil {
			res.Results = append(res.Results, out.Result)
		}
		if err == nil && (out == nil || out.Wisdom == nil) {
			err = types.NewError(types.ErrStageFailed, "stage returned no context").
				WithDetail(types.DetailStage, stage.Name())
		}
		if err != nil {
			res.FailedStage = stage.Name()
			return res, fmt.Errorf("stage %d (%s) failed: %w", i+1, stage.Name(), err)
		}

		current = out.Wisdom
		res.Wisdom = current
	}

	return res, nil
}

// Name 返回流水线名称
func (p *Pipeline) Name() string {
	return p.name
}

// Stages 返回所有 stage
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}
