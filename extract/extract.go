package extract

import (
	"errors"
	"fmt"

	"github.com/BaSui01/synthdoc/types"
)

// MissingInResponse is stored under a rule's field when its markers are absent.
const MissingInResponse = "Missing in Response"

// Rule maps one delimiter-bounded span onto a named output field.
type Rule struct {
	Start     string `yaml:"start" json:"start"`
	End       string `yaml:"end" json:"end"`
	Field     string `yaml:"field" json:"field"`
	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`

	// Func overrides Transform for rules built in code.
	Func TransformFunc `yaml:"-" json:"-"`
}

// Validate checks the rule is usable.
func (r Rule) Validate() error {
	var errs []error
	if r.Start == "" {
		errs = append(errs, errors.New("start marker is required"))
	}
	if r.End == "" {
		errs = append(errs, errors.New("end marker is required"))
	}
	if r.Field == "" {
		errs = append(errs, errors.New("field is required"))
	}
	if r.Func == nil {
		if _, err := ParseTransform(r.Transform); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rule %q: %w", r.Field, errors.Join(errs...))
	}
	return nil
}

// Apply finds the rule's span in text and runs its transform.
func (r Rule) Apply(text string) (string, bool) {
	span, ok := Between(text, r.Start, r.End)
	if !ok {
		return "", false
	}
	fn := r.Func
	if fn == nil {
		var err error
		if fn, err = ParseTransform(r.Transform); err != nil {
			return span, true
		}
	}
	return fn(span), true
}

// Result is the outcome of one extraction pass.
type Result struct {
	Fields  types.Wisdom
	Missing []string
}

// Complete reports whether every rule matched.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// Scan applies every rule independently to text. Rules never see each
// other's output.
func Scan(text string, rules []Rule) Result {
	res := Result{Fields: make(types.Wisdom, len(rules))}
	for _, rule := range rules {
		value, ok := rule.Apply(text)
		if !ok {
			res.Fields[rule.Field] = MissingInResponse
			res.Missing = append(res.Missing, rule.Field)
			continue
		}
		res.Fields[rule.Field] = value
	}
	return res
}

// Extract returns the merged fields produced by rules over text.
func Extract(text string, rules []Rule) types.Wisdom {
	return Scan(text, rules).Fields
}
