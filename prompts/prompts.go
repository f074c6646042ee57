// Package prompts 内置默认的思维流程定义。
package prompts

import (
	_ "embed"
	"fmt"

	"github.com/BaSui01/synthdoc/workflow"
)

//go:embed default.yaml
var defaultYAML []byte

// Default 解析内置的思维流程定义
func Default() ([]workflow.ThoughtProcess, error) {
	processes, err := workflow.Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded processes: %w", err)
	}
	return processes, nil
}

// Raw returns the embedded definition file.
func Raw() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load 返回内置定义与额外文件中的定义，文件中的同名流程覆盖内置定义
func Load(files ...string) ([]workflow.ThoughtProcess, error) {
	builtin, err := Default()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(builtin))
	out := append([]workflow.ThoughtProcess(nil), builtin...)
	for i, p := range out {
		index[p.Name] = i
	}

	for _, f := range files {
		loaded, err := workflow.LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, p := range loaded {
			if i, ok := index[p.Name]; ok {
				out[i] = p
				continue
			}
			index[p.Name] = len(out)
			out = append(out, p)
		}
	}
	return out, nil
}
