package extract

import "strings"

// Between returns the text between the first occurrence of start and the
// first occurrence of end after it. The span may contain newlines.
func Between(text, start, end string) (string, bool) {
	if start == "" || end == "" {
		return "", false
	}
	i := strings.Index(text, start)
	if i < 0 {
		return "", false
	}
	after := text[i+len(start):]
	j := strings.Index(after, end)
	if j < 0 {
		return "", false
	}
	return after[:j], true
}
