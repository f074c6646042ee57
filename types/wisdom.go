package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Wisdom is the context threaded through every stage of a pipeline run.
// Later stages may read any field written by earlier stages of the same run.
// Stages never mutate a Wisdom they received; they return a merged copy.
type Wisdom map[string]any

// NewWisdom creates a Wisdom seeded with a copy of the given fields.
func NewWisdom(seed map[string]any) Wisdom {
	w := make(Wisdom, len(seed))
	for k, v := range seed {
		w[k] = v
	}
	return w
}

// Clone returns a shallow copy. A nil Wisdom clones to an empty one.
func (w Wisdom) Clone() Wisdom {
	return NewWisdom(w)
}

// Merge returns a new Wisdom holding w overlaid with delta.
func (w Wisdom) Merge(delta map[string]any) Wisdom {
	out := make(Wisdom, len(w)+len(delta))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range delta {
		out[k] = v
	}
	return out
}

// Text returns the string form of a field.
func (w Wisdom) Text(key string) (string, bool) {
	v, ok := w[key]
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Keys returns field names in sorted order.
func (w Wisdom) Keys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stringify renders a context value the way prompts expect it:
// strings verbatim, byte slices as text, maps and slices as compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case map[string]any, []any, []string, []map[string]any, Wisdom:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}
