package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRender_Substitutes(t *testing.T) {
	t.Parallel()

	got := Render("Name: <!name!>, Desc: <!desc!>", map[string]any{
		"name": "Student",
		"desc": "A learner",
	})
	assert.Equal(t, "Name: Student, Desc: A learner", got)
}

func TestRender_LeavesUnresolvedVerbatim(t *testing.T) {
	t.Parallel()

	got := Render("Fix <!currentArtifact!> using <!errorReport!>", map[string]any{
		"errorReport": "missing RefId",
	})
	assert.Equal(t, "Fix <!currentArtifact!> using missing RefId", got)
}

func TestRender_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		ctx      map[string]any
		want     string
	}{
		{name: "no placeholders", template: "plain text", ctx: nil, want: "plain text"},
		{name: "repeated", template: "<!a!>-<!a!>", ctx: map[string]any{"a": "x"}, want: "x-x"},
		{name: "number", template: "n=<!n!>", ctx: map[string]any{"n": 42}, want: "n=42"},
		{name: "json value", template: "<!spec!>", ctx: map[string]any{"spec": []any{map[string]any{"XPath": "/a"}}}, want: `[{"XPath":"/a"}]`},
		{name: "empty token", template: "<!!>", ctx: map[string]any{"": "x"}, want: "<!!>"},
		{name: "unterminated", template: "a <!name", ctx: map[string]any{"name": "x"}, want: "a <!name"},
		{name: "name with space", template: "<!a b!>", ctx: map[string]any{"a b": "x"}, want: "x"},
		{name: "name with colon", template: "<!a:b!>", ctx: map[string]any{"a:b": "Y"}, want: "Y"},
		{name: "non-ASCII name", template: "<!名前!>", ctx: map[string]any{"名前": "X"}, want: "X"},
		{name: "newline in name", template: "<!a\nb!>", ctx: map[string]any{"a\nb": "x"}, want: "<!a\nb!>"},
		{name: "opener inside token", template: "<!a <!b!>", ctx: map[string]any{"b": "B"}, want: "<!a B"},
		{name: "substituted text not rescanned", template: "<!a!>", ctx: map[string]any{"a": "<!b!>", "b": "no"}, want: "<!b!>"},
		{name: "dotted name", template: "<!spec.v1!>", ctx: map[string]any{"spec.v1": "ok"}, want: "ok"},
		{name: "nil value", template: "[<!a!>]", ctx: map[string]any{"a": nil}, want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.ctx))
		})
	}
}

func TestPlaceholdersAndUnresolved(t *testing.T) {
	t.Parallel()

	tpl := "<!specification!> <!currentArtifact!> <!specification!> <!errorReport!> <!bad\nname!>"
	assert.Equal(t, []string{"specification", "currentArtifact", "errorReport"}, Placeholders(tpl))
	assert.Equal(t, []string{"currentArtifact", "errorReport"}, Unresolved(tpl, map[string]any{"specification": "[]"}))
	assert.Empty(t, Placeholders("none here"))
}

var nameGen = rapid.StringMatching(`[A-Za-z][A-Za-z0-9_]{0,12}`)

// wideNameGen 覆盖空格、标点和非 ASCII 字符。
var wideNameGen = rapid.StringMatching(`[^\r\n<!>]{1,16}`)

func TestRender_Property_AbsentFieldVerbatim(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := nameGen.Draw(rt, "name")
		prefix := rapid.StringMatching(`[a-z ]{0,10}`).Draw(rt, "prefix")
		tpl := prefix + "<!" + name + "!>"

		got := Render(tpl, map[string]any{"other_" + name: "x"})
		if got != tpl {
			rt.Fatalf("expected %q to stay verbatim, got %q", tpl, got)
		}
	})
}

func TestRender_Property_PresentFieldExact(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.OneOf(nameGen, wideNameGen).Draw(rt, "name")
		value := rapid.String().Draw(rt, "value")
		prefix := rapid.StringMatching(`[a-z :]{0,10}`).Draw(rt, "prefix")
		suffix := rapid.StringMatching(`[a-z :]{0,10}`).Draw(rt, "suffix")

		got := Render(prefix+"<!"+name+"!>"+suffix, map[string]any{name: value})
		want := prefix + value + suffix
		if got != want {
			rt.Fatalf("got %q, want %q", got, want)
		}
	})
}
