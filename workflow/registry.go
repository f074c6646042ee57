package workflow

import (
	"sort"

	"github.com/BaSui01/synthdoc/internal/metrics"
	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/types"
	"go.uber.org/zap"
)

// Deps 构建 stage 所需的运行时依赖
type Deps struct {
	Provider llm.Provider
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

// StepFactory 根据 StageSpec 构建 Stage
type StepFactory func(spec StageSpec, process string, deps Deps) (Stage, error)

// RegistryOption 配置 Registry
type RegistryOption func(*Registry)

// WithStepKind 注册自定义 stage 类型
func WithStepKind(kind string, factory StepFactory) RegistryOption {
	return func(r *Registry) { r.kinds[kind] = factory }
}

// Registry 思维流程注册表
// 构建完成后只读，可被多个并发运行共享。
type Registry struct {
	processes map[string]ThoughtProcess
	kinds     map[string]StepFactory
}

func builtinKinds() map[string]StepFactory {
	return map[string]StepFactory{
		KindThinker: func(spec StageSpec, process string, deps Deps) (Stage, error) {
			return NewThinker(spec, deps.Provider, deps.Logger,
				WithProcessName(process),
				WithThinkerMetrics(deps.Metrics),
			)
		},
		KindJSON: func(spec StageSpec, _ string, _ Deps) (Stage, error) {
			return newJSONStep(spec), nil
		},
		KindCopy: func(spec StageSpec, _ string, _ Deps) (Stage, error) {
			return newCopyStep(spec), nil
		},
	}
}

// NewRegistry 创建注册表，校验每个思维流程及其 stage 类型
func NewRegistry(processes []ThoughtProcess, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		processes: make(map[string]ThoughtProcess, len(processes)),
		kinds:     builtinKinds(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range processes {
		if err := p.Validate(); err != nil {
			return nil, types.NewConfigurationError("invalid thought process %q", p.Name).WithCause(err)
		}
		if _, dup := r.processes[p.Name]; dup {
			return nil, types.NewConfigurationError("duplicate thought process %q", p.Name)
		}
		for _, s := range p.Stages {
			if _, ok := r.kinds[s.kind()]; !ok {
				return nil, types.NewConfigurationError("thought process %q: stage %q has unknown kind %q",
					p.Name, s.Name, s.Kind).
					WithDetail(types.DetailProcess, p.Name).
					WithDetail(types.DetailStage, s.Name)
			}
		}
		r.processes[p.Name] = p
	}
	return r, nil
}

// Names 返回已注册的思维流程名称（有序）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.processes))
	for name := range r.processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Process 返回指定思维流程的定义
func (r *Registry) Process(name string) (ThoughtProcess, bool) {
	p, ok := r.processes[name]
	return p, ok
}

// Conversation 构建指定思维流程的 Conversation。
// 名称未注册时在任何生成之前返回 CONFIGURATION 错误。
func (r *Registry) Conversation(name string, deps Deps) (*Conversation, error) {
	p, ok := r.processes[name]
	if !ok {
		return nil, types.NewConfigurationError("thought process %q is not registered", name).
			WithDetail(types.DetailProcess, name)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	stages := make([]Stage, 0, len(p.Stages))
	for _, spec := range p.Stages {
		stage, err := r.kinds[spec.kind()](spec, p.Name, deps)
		if err != nil {
			if _, ok := types.AsError(err); ok {
				return nil, err
			}
			return nil, types.NewConfigurationError("thought process %q: build stage %q", p.Name, spec.Name).
				WithCause(err)
		}
		stages = append(stages, stage)
	}

	return &Conversation{
		process:  p,
		pipeline: NewPipeline(p.Name, stages...),
		logger:   deps.Logger.With(zap.String("component", "conversation"), zap.String("process", p.Name)),
	}, nil
}
