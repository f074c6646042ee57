package workflow

import (
	"errors"
	"fmt"

	"github.com/BaSui01/synthdoc/extract"
)

// 内置 stage 类型
const (
	KindThinker = "thinker"
	KindJSON    = "json"
	KindCopy    = "copy"
)

// DefaultWisdomField 是未配置提取规则时保存原始响应的字段
const DefaultWisdomField = "wisdom"

// StageSpec 描述一个 stage。加载后只读，在多次运行间共享。
type StageSpec struct {
	Name        string `yaml:"name" json:"name"`
	Kind        string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Thinker 字段
	SystemPrompt  string         `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	Template      string         `yaml:"template,omitempty" json:"template,omitempty"`
	Constants     map[string]any `yaml:"constants,omitempty" json:"constants,omitempty"`
	Rules         []extract.Rule `yaml:"extract,omitempty" json:"extract,omitempty"`
	WisdomField   string         `yaml:"wisdom_field,omitempty" json:"wisdom_field,omitempty"`
	ValidityField string         `yaml:"validity_field,omitempty" json:"validity_field,omitempty"`
	Model         string         `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature   *float64       `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens     int            `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`

	// 普通步骤参数（json / copy 使用 from、to）
	Params map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

func (s StageSpec) kind() string {
	if s.Kind == "" {
		return KindThinker
	}
	return s.Kind
}

func (s StageSpec) wisdomField() string {
	if s.WisdomField == "" {
		return DefaultWisdomField
	}
	return s.WisdomField
}

// clone copies the mutable collections so a built stage never shares them
// with the loaded definition.
func (s StageSpec) clone() StageSpec {
	out := s
	if s.Constants != nil {
		out.Constants = make(map[string]any, len(s.Constants))
		for k, v := range s.Constants {
			out.Constants[k] = v
		}
	}
	if s.Rules != nil {
		out.Rules = append([]extract.Rule(nil), s.Rules...)
	}
	if s.Params != nil {
		out.Params = make(map[string]string, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	if s.Temperature != nil {
		t := *s.Temperature
		out.Temperature = &t
	}
	return out
}

// Validate 校验 stage 定义，收集所有错误
func (s StageSpec) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}

	switch s.kind() {
	case KindThinker:
		if s.Template == "" {
			errs = append(errs, errors.New("template is required"))
		}
		fields := make(map[string]bool, len(s.Rules))
		for _, r := range s.Rules {
			if err := r.Validate(); err != nil {
				errs = append(errs, err)
			}
			if r.Field != "" && fields[r.Field] {
				errs = append(errs, fmt.Errorf("duplicate extraction field %q", r.Field))
			}
			fields[r.Field] = true
		}
		if s.ValidityField != "" && fields[s.ValidityField] {
			errs = append(errs, fmt.Errorf("validity_field %q collides with an extraction field", s.ValidityField))
		}
		if s.Temperature != nil && (*s.Temperature < 0 || *s.Temperature > 2) {
			errs = append(errs, errors.New("temperature must be between 0 and 2"))
		}
		if s.MaxTokens < 0 {
			errs = append(errs, errors.New("max_tokens must not be negative"))
		}
	case KindJSON, KindCopy:
		if s.Params["from"] == "" {
			errs = append(errs, fmt.Errorf("%s step requires params.from", s.kind()))
		}
		if s.Params["to"] == "" {
			errs = append(errs, fmt.Errorf("%s step requires params.to", s.kind()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("stage %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

// producedFields lists the context fields a builtin stage writes.
// The second result is false for custom kinds whose output is unknown.
func (s StageSpec) producedFields() ([]string, bool) {
	switch s.kind() {
	case KindThinker:
		var fields []string
		if len(s.Rules) == 0 {
			fields = append(fields, s.wisdomField())
		}
		for _, r := range s.Rules {
			fields = append(fields, r.Field)
		}
		if s.ValidityField != "" {
			fields = append(fields, s.ValidityField)
		}
		return fields, true
	case KindJSON, KindCopy:
		return []string{s.Params["to"]}, true
	default:
		return nil, false
	}
}

// ThoughtProcess 是一个命名的、有序的 stage 配置
type ThoughtProcess struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	OutputField string      `yaml:"output_field,omitempty" json:"output_field,omitempty"`
	Stages      []StageSpec `yaml:"stages" json:"stages"`
}

// Output returns the context field GetResponse reports as wisdom.
func (p ThoughtProcess) Output() string {
	if p.OutputField == "" {
		return DefaultWisdomField
	}
	return p.OutputField
}

// StageNames 返回按顺序排列的 stage 名称
func (p ThoughtProcess) StageNames() []string {
	names := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		names = append(names, s.Name)
	}
	return names
}

// Validate 校验思维流程定义，收集所有错误
func (p ThoughtProcess) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(p.Stages) == 0 {
		errs = append(errs, errors.New("at least one stage is required"))
	}

	seen := make(map[string]bool, len(p.Stages))
	produced := make(map[string]bool)
	known := true
	for _, s := range p.Stages {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
		if s.Name != "" && seen[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate stage name %q", s.Name))
		}
		seen[s.Name] = true

		fields, ok := s.producedFields()
		known = known && ok
		for _, f := range fields {
			produced[f] = true
		}
	}

	if known && len(p.Stages) > 0 && !produced[p.Output()] {
		errs = append(errs, fmt.Errorf("output field %q is not produced by any stage", p.Output()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("thought process %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}
