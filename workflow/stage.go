package workflow

import (
	"context"
	"time"

	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/types"
)

// Stage 是流水线中的一个执行单元（Thinker 或普通步骤）
// Execute 不得修改 in，需返回合并后的新 Wisdom。
type Stage interface {
	Name() string
	Execute(ctx context.Context, in types.Wisdom, opts RunOptions) (*StageOutput, error)
}

// RunOptions 单次运行的调用方参数，会传递给本次运行中的每个 Thinker
type RunOptions struct {
	// Temperature 为 nil 时依次回退到 StageSpec 与 Provider 默认值
	Temperature *float64
	// Model 为空时依次回退到 StageSpec 与 Provider 默认值
	Model string
}

// StageOutput 单个 stage 的执行结果
type StageOutput struct {
	Wisdom types.Wisdom
	// Result 仅 Thinker 产生，普通步骤为 nil
	Result *GenerationResult
}

// GenerationResult 记录一次生成调用的诊断信息
type GenerationResult struct {
	Stage        string        `json:"stage"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Prompt       string        `json:"prompt"`
	Response     string        `json:"response,omitempty"`
	Output       types.Wisdom  `json:"output,omitempty"`
	Missing      []string      `json:"missing,omitempty"`
	Model        string        `json:"model,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty"`
	Usage        llm.ChatUsage `json:"usage"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// Failed 报告生成调用本身是否失败（传输或模型错误，而非校验失败）
func (r *GenerationResult) Failed() bool {
	return r != nil && r.Err != nil
}

// ErrorMessage returns the failure text, or "" on success.
func (r *GenerationResult) ErrorMessage() string {
	if !r.Failed() {
		return ""
	}
	return r.Err.Error()
}
