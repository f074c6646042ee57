package workflow

import (
	"context"
	"time"

	"github.com/BaSui01/synthdoc/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conversation 对单个思维流程暴露 GetResponse 契约
type Conversation struct {
	process  ThoughtProcess
	pipeline *Pipeline
	logger   *zap.Logger
}

// Response GetResponse 的结果
type Response struct {
	// Wisdom 思维流程输出字段的文本形式
	Wisdom string
	// Context 最终上下文；失败时为失败 stage 之前的上下文
	Context types.Wisdom
	// Raw 最后一次生成结果，用于诊断
	Raw *GenerationResult
	// Results 本次运行的全部生成结果
	Results []*GenerationResult
}

// Name 返回思维流程名称
func (c *Conversation) Name() string { return c.process.Name }

// Process returns the underlying definition.
func (c *Conversation) Process() ThoughtProcess { return c.process }

// Pipeline 返回底层流水线
func (c *Conversation) Pipeline() *Pipeline { return c.pipeline }

// GetResponse 以 inputs 为种子创建新的上下文并运行流水线。
// 出错时仍返回 Response，携带失败前的上下文与最后的生成结果。
func (c *Conversation) GetResponse(ctx context.Context, inputs map[string]any, opts RunOptions) (*Response, error) {
	if _, ok := types.TraceID(ctx); !ok {
		ctx = types.WithTraceID(ctx, uuid.NewString())
	}
	ctx = types.WithThoughtProcess(ctx, c.process.Name)
	traceID, _ := types.TraceID(ctx)

	start := time.Now()
	run, err := c.pipeline.Run(ctx, types.NewWisdom(inputs), opts)

	resp := &Response{
		Context: run.Wisdom,
		Raw:     run.Last(),
		Results: run.Results,
	}
	if err != nil {
		c.logger.Warn("thought process failed",
			zap.String("trace_id", traceID),
			zap.String("failed_stage", run.FailedStage),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return resp, err
	}

	text, ok := run.Wisdom.Text(c.process.Output())
	if !ok {
		c.logger.Warn("output field not present in final context",
			zap.String("trace_id", traceID),
			zap.String("field", c.process.Output()),
		)
	}
	resp.Wisdom = text

	c.logger.Debug("thought process completed",
		zap.String("trace_id", traceID),
		zap.Int("generations", len(run.Results)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
