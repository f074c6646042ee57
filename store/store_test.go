package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/BaSui01/synthdoc/config"
	"github.com/BaSui01/synthdoc/internal/database"
	"github.com/BaSui01/synthdoc/repair"
	"github.com/BaSui01/synthdoc/types"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupStore(t *testing.T) *RunStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	// 内存库每个连接独立，限制为单连接
	s, err := New(db, database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}, zap.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, s.AutoMigrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func temp(f float64) *float64 { return &f }

func sampleRecord(id, status string, started time.Time) repair.Record {
	return repair.Record{
		RunID:    id,
		Process:  "sample-generator",
		Status:   status,
		Seed:     map[string]any{"documentType": "XML"},
		Artifact: "<a/>",
		Message:  "element b missing",
		Attempts: 2,
		History: []repair.Attempt{
			{Index: 0, Temperature: temp(0), Artifact: "<x/>", Outcome: repair.Outcome{Message: "element b missing"}, Duration: 1500 * time.Millisecond},
			{Index: 1, Temperature: temp(0.3), Artifact: "<a/>", Outcome: repair.Outcome{Message: "element b missing"}, Duration: time.Second},
		},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestRunStore_RecordAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Millisecond)
	rec := sampleRecord("run-1", repair.StatusExhausted, started)
	rec.ErrorCode = types.ErrValidationExhausted
	rec.Err = errors.New("validation did not converge")

	require.NoError(t, s.RecordRun(ctx, rec))

	run, err := s.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "sample-generator", run.Process)
	assert.Equal(t, repair.StatusExhausted, run.Status)
	assert.Equal(t, "<a/>", run.Artifact)
	assert.Equal(t, 2, run.Attempts)
	assert.Equal(t, "VALIDATION_EXHAUSTED", run.ErrorCode)
	assert.Equal(t, "validation did not converge", run.ErrorMessage)
	assert.WithinDuration(t, started, run.StartedAt, time.Millisecond)

	seed, err := run.SeedMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"documentType": "XML"}, seed)

	require.Len(t, run.History, 2)
	assert.Equal(t, 0, run.History[0].Idx)
	assert.Equal(t, "<x/>", run.History[0].Artifact)
	assert.Equal(t, 1500*time.Millisecond, run.History[0].Duration())
	assert.Equal(t, 0.3, *run.History[1].Temperature)
	assert.False(t, run.History[1].Valid)
}

func TestRunStore_GetNotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunStore_RecordRunRequiresID(t *testing.T) {
	s := setupStore(t)
	assert.Error(t, s.RecordRun(context.Background(), repair.Record{}))
}

func TestRunStore_DuplicateID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	rec := sampleRecord("dup", repair.StatusAccepted, time.Now())
	require.NoError(t, s.RecordRun(ctx, rec))
	assert.Error(t, s.RecordRun(ctx, rec))
}

func TestRunStore_List(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	statuses := []string{repair.StatusAccepted, repair.StatusExhausted, repair.StatusExhausted, repair.StatusFailed}
	for i, status := range statuses {
		rec := sampleRecord(fmt.Sprintf("run-%d", i), status, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.RecordRun(ctx, rec))
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// 按开始时间倒序
	assert.Equal(t, "run-3", all[0].ID)
	assert.Empty(t, all[0].History)

	exhausted, err := s.ListByStatus(ctx, repair.StatusExhausted, 0)
	require.NoError(t, err)
	require.Len(t, exhausted, 2)
	assert.Equal(t, "run-2", exhausted[0].ID)

	limited, err := s.List(ctx, ListOptions{Process: "sample-generator", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.List(ctx, ListOptions{Process: "other"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// 与修复循环组合：循环终态经 Recorder 落盘
func TestRunStore_AsLoopRecorder(t *testing.T) {
	s := setupStore(t)

	gen := staticGenerator{artifact: "<doc/>"}
	validator := repair.ValidatorFunc(func(context.Context, string) (repair.Outcome, error) {
		return repair.Outcome{Message: "still wrong"}, nil
	})
	loop, err := repair.New(gen, validator, repair.Config{RetryLimit: 1, Schedule: repair.Schedule{0.2}}, nil,
		repair.WithRecorder(s))
	require.NoError(t, err)

	ctx := types.WithRunID(context.Background(), "loop-run")
	_, err = loop.Run(ctx, map[string]any{"k": "v"})
	require.True(t, types.IsErrorCode(err, types.ErrValidationExhausted))

	run, err := s.Get(context.Background(), "loop-run")
	require.NoError(t, err)
	assert.Equal(t, repair.StatusExhausted, run.Status)
	assert.Equal(t, "<doc/>", run.Artifact)
	assert.Equal(t, "still wrong", run.Message)
	assert.Equal(t, 2, run.Attempts)
	assert.Len(t, run.History, 2)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.DefaultDatabaseConfig()
	cfg.Name = t.TempDir() + "/runs.db"
	cfg.HealthCheckInterval = 0

	s, err := Open(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.RecordRun(context.Background(), sampleRecord("file-run", repair.StatusAccepted, time.Now())))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, nil, nil)
	assert.Error(t, err)
}
