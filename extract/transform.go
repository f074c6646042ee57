package extract

import (
	"fmt"
	"sort"
	"strings"
)

// TransformFunc post-processes a matched span.
type TransformFunc func(span string) string

// Built-in transform names.
const (
	TransformRaw      = "raw"
	TransformBrackets = "brackets"
	TransformXML      = "xml"
	TransformJSON     = "json"
	TransformTrim     = "trim"
)

// DefaultTransform is applied when a rule names no transform.
const DefaultTransform = TransformBrackets

var builtinTransforms = map[string]TransformFunc{
	TransformRaw:      func(s string) string { return s },
	TransformBrackets: trimBrackets,
	TransformXML:      func(s string) string { return trimBetween(s, '<', '>') },
	TransformJSON:     trimJSON,
	TransformTrim:     strings.TrimSpace,
}

// ParseTransform resolves a transform by name. An empty name yields the default.
func ParseTransform(name string) (TransformFunc, error) {
	if name == "" {
		name = DefaultTransform
	}
	fn, ok := builtinTransforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q (known: %s)", name, strings.Join(TransformNames(), ", "))
	}
	return fn, nil
}

// TransformNames lists the built-in transform names.
func TransformNames() []string {
	names := make([]string, 0, len(builtinTransforms))
	for name := range builtinTransforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// trimBrackets keeps the widest first-opener..last-closer span among <>, {} and [].
// 正文前带方括号之类的说明文字时，结构化载荷仍然胜出。
func trimBrackets(s string) string {
	best := s
	found := false
	for _, pair := range [...][2]byte{{'<', '>'}, {'{', '}'}, {'[', ']'}} {
		i := strings.IndexByte(s, pair[0])
		j := strings.LastIndexByte(s, pair[1])
		if i < 0 || j < i {
			continue
		}
		if !found || j+1-i > len(best) {
			best = s[i : j+1]
			found = true
		}
	}
	return best
}

func trimJSON(s string) string {
	i := strings.IndexAny(s, "{[")
	if i < 0 {
		return s
	}
	if s[i] == '{' {
		return trimBetween(s, '{', '}')
	}
	return trimBetween(s, '[', ']')
}

func trimBetween(s string, open, close byte) string {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j < i {
		return s
	}
	return s[i : j+1]
}
