package main

import (
	"fmt"

	"github.com/BaSui01/synthdoc/specinput"
)

// 种子上下文字段
const (
	fieldSpecification = "specification"
	fieldDocumentType  = "documentType"
)

// seedOptions 描述一次运行的输入
type seedOptions struct {
	documentType string
	prefix       string
	vars         map[string]string
}

// buildSeed 组装循环的种子上下文：规范 JSON、文档类型与额外变量
func buildSeed(records specinput.Records, opts seedOptions) (map[string]any, error) {
	selected := records.WithPrefix(opts.prefix)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no specification records under %q", opts.prefix)
	}
	spec, err := selected.JSON()
	if err != nil {
		return nil, err
	}

	seed := make(map[string]any, len(opts.vars)+2)
	for k, v := range opts.vars {
		seed[k] = v
	}
	seed[fieldSpecification] = spec
	seed[fieldDocumentType] = opts.documentType
	return seed, nil
}
