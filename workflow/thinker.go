package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/synthdoc/extract"
	"github.com/BaSui01/synthdoc/internal/metrics"
	"github.com/BaSui01/synthdoc/internal/telemetry"
	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/prompt"
	"github.com/BaSui01/synthdoc/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxDetailBytes 限制附加到错误上的提示词/响应长度
const maxDetailBytes = 4096

// ThinkerOption 配置 Thinker 的可选依赖
type ThinkerOption func(*Thinker)

// WithThinkerMetrics 注入指标收集器
func WithThinkerMetrics(c *metrics.Collector) ThinkerOption {
	return func(t *Thinker) { t.metrics = c }
}

// WithProcessName 设置所属思维流程名称（用于日志与指标标签）
func WithProcessName(name string) ThinkerOption {
	return func(t *Thinker) { t.process = name }
}

// Thinker 生成 stage：渲染提示词 → 调用生成模型 → 提取结构化字段
type Thinker struct {
	spec     StageSpec
	provider llm.Provider
	logger   *zap.Logger
	metrics  *metrics.Collector
	process  string
}

// NewThinker 创建 Thinker。spec 必须是 thinker 类型且通过校验。
func NewThinker(spec StageSpec, provider llm.Provider, logger *zap.Logger, opts ...ThinkerOption) (*Thinker, error) {
	if provider == nil {
		return nil, types.NewConfigurationError("stage %q: generator is required", spec.Name)
	}
	if spec.kind() != KindThinker {
		return nil, types.NewConfigurationError("stage %q: kind %q is not a thinker", spec.Name, spec.Kind)
	}
	if err := spec.Validate(); err != nil {
		return nil, types.NewConfigurationError("invalid stage %q", spec.Name).WithCause(err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Thinker{
		spec:     spec.clone(),
		provider: provider,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logger.With(
		zap.String("component", "thinker"),
		zap.String("stage", spec.Name),
		zap.String("process", t.process),
	)
	return t, nil
}

// Name 返回 stage 名称
func (t *Thinker) Name() string { return t.spec.Name }

// Spec returns a copy of the stage specification.
func (t *Thinker) Spec() StageSpec { return t.spec.clone() }

// Execute 执行一次生成。
// 生成模型调用失败时返回 GENERATION_TRANSPORT 错误，StageOutput.Result 携带诊断信息。
func (t *Thinker) Execute(ctx context.Context, in types.Wisdom, opts RunOptions) (*StageOutput, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "workflow.thinker",
		trace.WithAttributes(
			attribute.String("synthdoc.process", t.process),
			attribute.String("synthdoc.stage", t.spec.Name),
		),
	)

	out, err := t.execute(ctx, in, opts)

	if out != nil && out.Result != nil {
		span.SetAttributes(
			attribute.String("synthdoc.model", out.Result.Model),
			attribute.Int("synthdoc.missing_fields", len(out.Result.Missing)),
		)
	}
	telemetry.EndSpan(span, err)
	return out, err
}

func (t *Thinker) execute(ctx context.Context, in types.Wisdom, opts RunOptions) (*StageOutput, error) {
	start := time.Now()

	renderCtx := in.Merge(t.spec.Constants)
	userPrompt := prompt.Render(t.spec.Template, renderCtx)
	systemPrompt := prompt.Render(t.spec.SystemPrompt, renderCtx)
	if unresolved := prompt.Unresolved(t.spec.Template, renderCtx); len(unresolved) > 0 {
		t.logger.Debug("template has unresolved placeholders", zap.Strings("fields", unresolved))
	}

	messages := make([]llm.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt})

	temperature := opts.Temperature
	if temperature == nil {
		temperature = t.spec.Temperature
	}
	model := opts.Model
	if model == "" {
		model = t.spec.Model
	}

	traceID, ok := types.TraceID(ctx)
	if !ok {
		traceID = uuid.NewString()
	}

	req := &llm.ChatRequest{
		TraceID:     traceID,
		Model:       model,
		Messages:    messages,
		MaxTokens:   t.spec.MaxTokens,
		Temperature: llm.Temperature(temperature),
	}

	result := &GenerationResult{
		Stage:        t.spec.Name,
		SystemPrompt: systemPrompt,
		Prompt:       userPrompt,
		Model:        model,
		Temperature:  temperature,
	}

	resp, err := t.provider.Completion(ctx, req)
	if err == nil {
		if _, ok := resp.Content(); !ok {
			err = &llm.Error{
				Code:     llm.ErrEmptyResponse,
				Message:  "response contained no choices",
				Provider: t.provider.Name(),
			}
		}
	}
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		t.metrics.RecordLLMRequest(t.provider.Name(), model, "error", result.Duration, 0, 0)
		t.metrics.RecordStage(t.process, t.spec.Name, "error", result.Duration)
		t.logger.Error("generator call failed",
			zap.String("trace_id", traceID),
			zap.Duration("duration", result.Duration),
			zap.Error(err),
		)
		genErr := types.NewError(types.ErrGenerationTransport,
			fmt.Sprintf("stage %s: generator call failed", t.spec.Name)).
			WithCause(err).
			WithDetail(types.DetailStage, t.spec.Name).
			WithDetail(types.DetailProcess, t.process).
			WithDetail(types.DetailLastPrompt, types.Truncate(userPrompt, maxDetailBytes))
		return &StageOutput{Result: result}, genErr
	}

	text, _ := resp.Content()
	result.Response = text
	result.Usage = resp.Usage
	if resp.Model != "" {
		result.Model = resp.Model
	}

	var delta types.Wisdom
	if len(t.spec.Rules) == 0 {
		delta = types.Wisdom{t.spec.wisdomField(): text}
	} else {
		scan := extract.Scan(text, t.spec.Rules)
		delta = scan.Fields
		result.Missing = scan.Missing
		for _, field := range scan.Missing {
			t.metrics.RecordExtractionMiss(t.spec.Name, field)
		}
		if len(scan.Missing) > 0 {
			t.logger.Warn("extraction markers missing in response",
				zap.String("trace_id", traceID),
				zap.Strings("fields", scan.Missing),
			)
		}
	}
	if t.spec.ValidityField != "" {
		delta[t.spec.ValidityField] = len(result.Missing) == 0
	}

	result.Output = delta
	result.Duration = time.Since(start)

	t.metrics.RecordLLMRequest(t.provider.Name(), result.Model, "success", result.Duration,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	t.metrics.RecordStage(t.process, t.spec.Name, "success", result.Duration)
	t.logger.Debug("stage completed",
		zap.String("trace_id", traceID),
		zap.String("model", result.Model),
		zap.Duration("duration", result.Duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return &StageOutput{Wisdom: in.Merge(delta), Result: result}, nil
}
