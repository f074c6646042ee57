package repair

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/synthdoc/types"
	"go.uber.org/zap"
)

// Record 一次循环的终态，交给 Recorder 持久化
type Record struct {
	RunID      string
	Process    string
	Status     string
	Seed       map[string]any
	Artifact   string
	Message    string
	Attempts   int
	History    []Attempt
	ErrorCode  types.ErrorCode
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder 接收每一个终态：accepted、exhausted 或 failed
type Recorder interface {
	RecordRun(ctx context.Context, rec Record) error
}

// RecorderFunc 函数适配器
type RecorderFunc func(ctx context.Context, rec Record) error

// RecordRun implements Recorder.
func (f RecorderFunc) RecordRun(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

func (l *Loop) finish(ctx context.Context, res *Result, seed map[string]any, err error, started time.Time) {
	if l.recorder == nil {
		return
	}

	rec := Record{
		RunID:      res.RunID,
		Process:    res.Process,
		Status:     res.Status,
		Seed:       seed,
		Artifact:   res.Artifact,
		Message:    res.Outcome.Message,
		Attempts:   res.Attempts,
		History:    res.History,
		Err:        err,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err != nil {
		rec.ErrorCode = types.GetErrorCode(err)
		var exhausted *ExhaustedError
		if errors.As(err, &exhausted) {
			rec.Message = exhausted.Message
		} else {
			rec.Message = err.Error()
		}
	}

	// 调用方取消后仍需落盘
	if rerr := l.recorder.RecordRun(context.WithoutCancel(ctx), rec); rerr != nil {
		l.logger.Error("failed to record run",
			zap.String("run_id", res.RunID),
			zap.String("status", res.Status),
			zap.Error(rerr),
		)
	}
}
