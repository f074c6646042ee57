package repair

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/BaSui01/synthdoc/internal/metrics"
	"github.com/BaSui01/synthdoc/internal/telemetry"
	"github.com/BaSui01/synthdoc/types"
	"github.com/BaSui01/synthdoc/workflow"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 默认的上下文字段名
const (
	DefaultArtifactField = "currentArtifact"
	DefaultErrorField    = "errorReport"
)

// 循环终态
const (
	StatusAccepted  = "accepted"
	StatusExhausted = "exhausted"
	StatusFailed    = "failed"
)

// Generator 生成候选产物；*workflow.Conversation 实现了该接口
type Generator interface {
	Name() string
	GetResponse(ctx context.Context, inputs map[string]any, opts workflow.RunOptions) (*workflow.Response, error)
}

// Config 修复循环配置
type Config struct {
	// RetryLimit 校验失败后的最大修复次数，总生成次数最多 RetryLimit+1
	RetryLimit int
	// Schedule 按尝试序号索引的温度
	Schedule Schedule
	// ArtifactField 上一次产物写入的上下文字段
	ArtifactField string
	// ErrorField 上一次校验消息写入的上下文字段
	ErrorField string
	// Model 可选的模型覆盖
	Model string
}

func (c Config) withDefaults() Config {
	if c.ArtifactField == "" {
		c.ArtifactField = DefaultArtifactField
	}
	if c.ErrorField == "" {
		c.ErrorField = DefaultErrorField
	}
	return c
}

// Attempt 单次生成-校验尝试的记录
type Attempt struct {
	Index       int             `json:"index"`
	Temperature *float64        `json:"temperature,omitempty"`
	Artifact    string          `json:"artifact"`
	Outcome     Outcome         `json:"outcome"`
	Code        types.ErrorCode `json:"code,omitempty"` // VALIDATION_FAILED 或 VALIDATOR_UNAVAILABLE
	Duration    time.Duration   `json:"duration"`
}

// Result 循环结果
type Result struct {
	RunID    string    `json:"run_id"`
	Process  string    `json:"process"`
	Status   string    `json:"status"`
	Artifact string    `json:"artifact"`
	Attempts int       `json:"attempts"`
	Outcome  Outcome   `json:"outcome"`
	History  []Attempt `json:"history"`
}

// ExhaustedError 修复预算耗尽，携带最后的产物与校验消息
type ExhaustedError struct {
	Artifact string
	Message  string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("artifact still invalid after %d attempts: %s", e.Attempts, e.Message)
}

// Option 配置 Loop
type Option func(*Loop)

// WithRecorder 注入终态记录器
func WithRecorder(r Recorder) Option {
	return func(l *Loop) { l.recorder = r }
}

// WithMetrics 注入指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(l *Loop) { l.metrics = c }
}

// WithRepairGenerator 第 1 次及之后的尝试使用单独的生成器
func WithRepairGenerator(g Generator) Option {
	return func(l *Loop) { l.repair = g }
}

// Loop 生成-校验-修复循环。构建后只读，可并发调用 Run。
type Loop struct {
	generator Generator
	repair    Generator
	validator Validator
	cfg       Config
	logger    *zap.Logger
	metrics   *metrics.Collector
	recorder  Recorder
}

// New 创建修复循环
func New(generator Generator, validator Validator, cfg Config, logger *zap.Logger, opts ...Option) (*Loop, error) {
	if generator == nil {
		return nil, types.NewConfigurationError("repair loop: generator is required")
	}
	if validator == nil {
		return nil, types.NewConfigurationError("repair loop: validator is required")
	}
	if cfg.RetryLimit < 0 {
		return nil, types.NewConfigurationError("repair loop: retry limit must not be negative, got %d", cfg.RetryLimit)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Loop{
		generator: generator,
		validator: validator,
		cfg:       cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logger.With(zap.String("component", "repair_loop"), zap.String("process", generator.Name()))
	return l, nil
}

// Run 以 seed 为输入执行循环。
// 只要至少完成了一次生成，返回的 Result 就非 nil（失败时用于保存未收敛的产物）。
func (l *Loop) Run(ctx context.Context, seed map[string]any) (*Result, error) {
	runID, ok := types.RunID(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = types.WithRunID(ctx, runID)
	}
	started := time.Now()

	ctx, span := telemetry.Tracer().Start(ctx, "repair.run",
		trace.WithAttributes(
			attribute.String("synthdoc.run_id", runID),
			attribute.String("synthdoc.process", l.generator.Name()),
			attribute.Int("synthdoc.retry_limit", l.cfg.RetryLimit),
		),
	)

	res, err := l.run(ctx, runID, seed)

	span.SetAttributes(
		attribute.String("synthdoc.status", res.Status),
		attribute.Int("synthdoc.attempts", res.Attempts),
	)
	telemetry.EndSpan(span, err)

	l.metrics.RecordRepairRun(res.Process, res.Status, res.Attempts)
	l.finish(ctx, res, seed, err, started)

	if res.Attempts == 0 {
		return nil, err
	}
	return res, err
}

func (l *Loop) run(ctx context.Context, runID string, seed map[string]any) (*Result, error) {
	res := &Result{RunID: runID, Process: l.generator.Name(), Status: StatusFailed}
	artifact, message := "", ""

	for i := 0; i <= l.cfg.RetryLimit; i++ {
		attempt, err := l.attempt(ctx, i, seed, artifact, message)
		if attempt != nil {
			res.History = append(res.History, *attempt)
			res.Attempts = len(res.History)
			res.Artifact = attempt.Artifact
			res.Outcome = attempt.Outcome
		}
		if err != nil {
			return res, annotate(err, res.Attempts, i+1, res.Artifact)
		}

		artifact = attempt.Artifact
		if attempt.Outcome.IsValid {
			res.Status = StatusAccepted
			l.logger.Info("artifact accepted",
				zap.String("run_id", runID),
				zap.Int("attempts", res.Attempts),
			)
			return res, nil
		}

		message = attempt.Outcome.Message
		l.logger.Warn("artifact rejected by validator",
			zap.String("run_id", runID),
			zap.String("code", string(attempt.Code)),
			zap.Int("attempt", i),
			zap.Int("remaining", l.cfg.RetryLimit-i),
			zap.String("message", types.Truncate(message, 512)),
		)
	}

	res.Status = StatusExhausted
	exhausted := &ExhaustedError{Artifact: artifact, Message: message, Attempts: res.Attempts}
	err := types.NewError(types.ErrValidationExhausted,
		fmt.Sprintf("validation did not converge after %d attempts", res.Attempts)).
		WithCause(exhausted).
		WithRetryable(false).
		WithDetail(types.DetailProcess, res.Process).
		WithDetail(types.DetailAttempts, strconv.Itoa(res.Attempts)).
		WithDetail(types.DetailArtifact, artifact).
		WithDetail(types.DetailLastResponse, message)
	return res, err
}

// attempt 执行一次生成与校验。生成失败时返回 nil Attempt。
func (l *Loop) attempt(ctx context.Context, i int, seed map[string]any, artifact, message string) (*Attempt, error) {
	ctx = types.WithAttempt(ctx, i)
	temperature := l.cfg.Schedule.At(i)

	ctx, span := telemetry.Tracer().Start(ctx, "repair.attempt",
		trace.WithAttributes(attribute.Int("synthdoc.attempt", i)),
	)
	if temperature != nil {
		span.SetAttributes(attribute.Float64("synthdoc.temperature", *temperature))
	}

	start := time.Now()
	inputs := types.NewWisdom(seed)
	inputs[l.cfg.ArtifactField] = artifact
	inputs[l.cfg.ErrorField] = message

	gen := l.generator
	if i > 0 && l.repair != nil {
		gen = l.repair
	}

	resp, err := gen.GetResponse(ctx, inputs, workflow.RunOptions{Temperature: temperature, Model: l.cfg.Model})
	if err != nil {
		err = generationError(err, gen.Name(), resp)
		telemetry.EndSpan(span, err)
		l.logger.Error("generation failed",
			zap.Int("attempt", i),
			zap.String("generator", gen.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	a := &Attempt{Index: i, Temperature: temperature, Artifact: resp.Wisdom}

	vstart := time.Now()
	outcome, err := l.validator.Validate(ctx, a.Artifact)
	vdur := time.Since(vstart)
	a.Duration = time.Since(start)
	if err != nil {
		l.metrics.RecordValidation("error", vdur)
		if !types.IsErrorCode(err, types.ErrValidatorUnavailable) {
			err = types.NewError(types.ErrValidatorUnavailable, "validator call failed").WithCause(err)
		}
		a.Outcome = Outcome{Message: err.Error()}
		a.Code = types.ErrValidatorUnavailable
		telemetry.EndSpan(span, err)
		l.logger.Error("validator call failed", zap.Int("attempt", i), zap.Error(err))
		return a, err
	}

	a.Outcome = outcome
	if outcome.IsValid {
		l.metrics.RecordValidation("valid", vdur)
	} else {
		a.Code = types.ErrValidationFailed
		l.metrics.RecordValidation("invalid", vdur)
	}
	span.SetAttributes(attribute.Bool("synthdoc.valid", outcome.IsValid))
	telemetry.EndSpan(span, nil)
	return a, nil
}

// generationError 保证生成阶段的错误以 types.Error 形式向上传播，并附带最后的提示词与响应
func generationError(err error, generator string, resp *workflow.Response) error {
	e, ok := types.AsError(err)
	if !ok {
		e = types.NewError(types.ErrGenerationTransport, "generation failed").WithCause(err)
	}
	e = e.WithRetryable(false).WithDetail(types.DetailProcess, generator)
	if resp != nil && resp.Raw != nil {
		if e.Detail(types.DetailLastPrompt) == "" {
			e = e.WithDetail(types.DetailLastPrompt, types.Truncate(resp.Raw.Prompt, 4096))
		}
		e = e.WithDetail(types.DetailLastResponse, types.Truncate(resp.Raw.Response, 4096))
	}
	return e
}

// annotate 为致命错误附加已记录的尝试数、失败的尝试序号（从 1 开始）与当前产物。
// 生成失败的那次尝试不进入 History，所以 attempts 可能比 failedAttempt 小 1。
func annotate(err error, attempts, failedAttempt int, artifact string) error {
	e, ok := types.AsError(err)
	if !ok {
		return err
	}
	return e.WithDetail(types.DetailAttempts, strconv.Itoa(attempts)).
		WithDetail(types.DetailFailedAttempt, strconv.Itoa(failedAttempt)).
		WithDetail(types.DetailArtifact, artifact)
}
