package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProcessFile 思维流程定义文件
type ProcessFile struct {
	Version   string           `yaml:"version"`
	Processes []ThoughtProcess `yaml:"processes"`
}

// LoadFile 从 YAML 文件加载思维流程定义
func LoadFile(path string) ([]ThoughtProcess, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read process file: %w", err)
	}
	processes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return processes, nil
}

// Parse 从 YAML 字节解析思维流程定义
func Parse(data []byte) ([]ThoughtProcess, error) {
	var file ProcessFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(file.Processes) == 0 {
		return nil, fmt.Errorf("no processes defined")
	}
	for _, p := range file.Processes {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Processes, nil
}
