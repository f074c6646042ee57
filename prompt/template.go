package prompt

import (
	"strings"

	"github.com/BaSui01/synthdoc/types"
)

// Placeholder delimiters.
const (
	OpenDelim  = "<!"
	CloseDelim = "!>"
)

// Render replaces every <!name!> whose name is present in ctx with the string
// form of ctx[name]. Unknown names and malformed tokens are left verbatim.
func Render(template string, ctx map[string]any) string {
	if !strings.Contains(template, OpenDelim) {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		open := strings.Index(rest, OpenDelim)
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open:]

		name, width, ok := scanToken(rest)
		if !ok {
			// 不是合法占位符，跳过 "<!" 继续扫描
			b.WriteString(OpenDelim)
			rest = rest[len(OpenDelim):]
			continue
		}

		if v, found := ctx[name]; found {
			b.WriteString(types.Stringify(v))
		} else {
			b.WriteString(rest[:width])
		}
		rest = rest[width:]
	}

	return b.String()
}

// Placeholders lists the distinct placeholder names in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)

	rest := template
	for {
		open := strings.Index(rest, OpenDelim)
		if open < 0 {
			return names
		}
		rest = rest[open:]
		name, width, ok := scanToken(rest)
		if !ok {
			rest = rest[len(OpenDelim):]
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		rest = rest[width:]
	}
}

// Unresolved lists placeholder names that ctx does not provide.
func Unresolved(template string, ctx map[string]any) []string {
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := ctx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// scanToken parses a token at the start of s, which must begin with OpenDelim.
// It returns the name and the full token width.
func scanToken(s string) (string, int, bool) {
	body := s[len(OpenDelim):]
	end := strings.Index(body, CloseDelim)
	if end <= 0 {
		return "", 0, false
	}
	name := body[:end]
	if !validName(name) {
		return "", 0, false
	}
	return name, len(OpenDelim) + end + len(CloseDelim), true
}

// validName 接受任意非空名称，只要不含换行、也不含分隔符 "<!"。
// "!>" 已由 scanToken 截断，不可能出现在名称中。
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "\r\n") && !strings.Contains(name, OpenDelim)
}
