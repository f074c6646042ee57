package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWisdom_MergeDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := Wisdom{"x": 1}
	merged := base.Merge(map[string]any{"y": 2, "x": 5})

	assert.Equal(t, Wisdom{"x": 1}, base)
	assert.Equal(t, Wisdom{"x": 5, "y": 2}, merged)
}

func TestWisdom_CloneNil(t *testing.T) {
	t.Parallel()

	var w Wisdom
	c := w.Clone()
	assert.NotNil(t, c)
	assert.Empty(t, c)
	c["a"] = 1
	assert.Nil(t, w)
}

func TestWisdom_TextAndKeys(t *testing.T) {
	t.Parallel()

	w := NewWisdom(map[string]any{
		"name":  "Student",
		"count": 3,
		"list":  []string{"a", "b"},
		"obj":   map[string]any{"k": "v"},
		"raw":   []byte("bytes"),
	})

	got, ok := w.Text("name")
	assert.True(t, ok)
	assert.Equal(t, "Student", got)

	got, _ = w.Text("count")
	assert.Equal(t, "3", got)

	got, _ = w.Text("list")
	assert.Equal(t, `["a","b"]`, got)

	got, _ = w.Text("obj")
	assert.Equal(t, `{"k":"v"}`, got)

	got, _ = w.Text("raw")
	assert.Equal(t, "bytes", got)

	_, ok = w.Text("missing")
	assert.False(t, ok)
	assert.Contains(t, w, "raw")

	assert.Equal(t, []string{"count", "list", "name", "obj", "raw"}, w.Keys())
}
