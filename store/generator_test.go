package store

import (
	"context"

	"github.com/BaSui01/synthdoc/workflow"
)

type staticGenerator struct {
	artifact string
}

func (staticGenerator) Name() string { return "static" }

func (g staticGenerator) GetResponse(context.Context, map[string]any, workflow.RunOptions) (*workflow.Response, error) {
	return &workflow.Response{Wisdom: g.artifact}, nil
}
