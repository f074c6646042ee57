// Package specinput 读取电子表格导出的元素规范（JSON 记录数组），
// 并序列化后注入提示词的 specification 字段。
package specinput

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// 记录的已知字段名
const (
	KeyXPath           = "XPath"
	KeyName            = "Name"
	KeyDescription     = "Description"
	KeyFormat          = "Format"
	KeyCharacteristics = "Characteristics"
)

var knownKeys = map[string]bool{
	KeyXPath: true, KeyName: true, KeyDescription: true, KeyFormat: true, KeyCharacteristics: true,
}

// Record 一个元素的规范。未知列保存在 Extra 中并原样输出。
type Record struct {
	XPath           string
	Name            string
	Description     string
	Format          string
	Characteristics string
	Extra           map[string]any
}

// UnmarshalJSON keeps unknown columns in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{}
	for k, v := range raw {
		if !knownKeys[k] {
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok && v != nil {
			s = fmt.Sprint(v)
		}
		switch k {
		case KeyXPath:
			r.XPath = s
		case KeyName:
			r.Name = s
		case KeyDescription:
			r.Description = s
		case KeyFormat:
			r.Format = s
		case KeyCharacteristics:
			r.Characteristics = s
		}
	}
	return nil
}

// MarshalJSON writes known fields first, then extras in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(k)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	known := []struct{ k, v string }{
		{KeyXPath, r.XPath},
		{KeyName, r.Name},
		{KeyDescription, r.Description},
		{KeyFormat, r.Format},
		{KeyCharacteristics, r.Characteristics},
	}
	for _, f := range known {
		if err := write(f.k, f.v); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, r.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records 规范记录集合
type Records []Record

// Parse 解析 JSON 记录数组，要求每条记录都有 XPath
func Parse(data []byte) (Records, error) {
	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("specification has no records")
	}

	var errs []error
	for i, r := range records {
		if strings.TrimSpace(r.XPath) == "" {
			errs = append(errs, fmt.Errorf("record %d: %s is required", i, KeyXPath))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// Load 从文件读取规范
func Load(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specification: %w", err)
	}
	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// JSON 返回嵌入提示词用的缩进 JSON
func (rs Records) JSON() (string, error) {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode specification: %w", err)
	}
	return string(data), nil
}

// WithPrefix 返回 XPath 以 prefix 开头的记录
func (rs Records) WithPrefix(prefix string) Records {
	if prefix == "" {
		return rs
	}
	out := make(Records, 0, len(rs))
	for _, r := range rs {
		if strings.HasPrefix(r.XPath, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Roots 返回所有 XPath 的第一段（去重、有序），用于按文档根拆分批量任务
func (rs Records) Roots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, r := range rs {
		trimmed := strings.TrimPrefix(r.XPath, "/")
		root, _, _ := strings.Cut(trimmed, "/")
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, "/"+root)
	}
	sort.Strings(roots)
	return roots
}
