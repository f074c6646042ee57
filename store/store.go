package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/synthdoc/config"
	"github.com/BaSui01/synthdoc/internal/database"
	"github.com/BaSui01/synthdoc/internal/metrics"
	"github.com/BaSui01/synthdoc/repair"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound 运行记录不存在
var ErrNotFound = errors.New("run not found")

const (
	defaultListLimit = 50
	maxTxRetries     = 3
)

// RunStore 基于 GORM 的运行记录存储
type RunStore struct {
	pool    *database.PoolManager
	logger  *zap.Logger
	metrics *metrics.Collector
	label   string
}

var _ repair.Recorder = (*RunStore)(nil)

// Open 按配置打开数据库并创建 RunStore；AutoMigrate 开启时自动建表
func Open(cfg config.DatabaseConfig, logger *zap.Logger, m *metrics.Collector) (*RunStore, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	s, err := New(db, database.PoolConfigFrom(cfg), logger, m)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := s.AutoMigrate(context.Background()); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// New 使用已打开的连接创建 RunStore
func New(db *gorm.DB, poolCfg database.PoolConfig, logger *zap.Logger, m *metrics.Collector) (*RunStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	label := db.Dialector.Name()

	pool, err := database.NewPoolManager(db, poolCfg, logger, database.WithPoolMetrics(m, label))
	if err != nil {
		return nil, err
	}
	return &RunStore{
		pool:    pool,
		logger:  logger.With(zap.String("component", "run_store")),
		metrics: m,
		label:   label,
	}, nil
}

// AutoMigrate 创建或更新表结构
func (s *RunStore) AutoMigrate(ctx context.Context) error {
	if err := s.pool.DB().WithContext(ctx).AutoMigrate(&Run{}, &Attempt{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RecordRun implements repair.Recorder.
func (s *RunStore) RecordRun(ctx context.Context, rec repair.Record) error {
	if rec.RunID == "" {
		return errors.New("record has no run id")
	}
	run, err := runFromRecord(rec)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", rec.RunID, err)
	}

	start := time.Now()
	err = s.pool.WithTransactionRetry(ctx, maxTxRetries, func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	s.metrics.RecordDBQuery(s.label, "insert_run", time.Since(start))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	s.logger.Debug("run recorded",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("attempts", run.Attempts),
	)
	return nil
}

// Get 按 ID 读取运行记录及其尝试历史
func (s *RunStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	var run Run
	err := s.pool.DB().WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		First(&run, "id = ?", id).Error
	s.metrics.RecordDBQuery(s.label, "get_run", time.Since(start))

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// ListOptions 列表过滤条件
type ListOptions struct {
	Process string
	Status  string
	// Limit <=0 时取 50
	Limit int
}

// List 按开始时间倒序列出运行记录（不含尝试历史）
func (s *RunStore) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := s.pool.DB().WithContext(ctx).Model(&Run{})
	if opts.Process != "" {
		q = q.Where("process = ?", opts.Process)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}

	start := time.Now()
	var runs []Run
	err := q.Order("started_at DESC").Limit(limit).Find(&runs).Error
	s.metrics.RecordDBQuery(s.label, "list_runs", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ListByStatus 列出指定终态的运行，例如 exhausted 的未收敛产物
func (s *RunStore) ListByStatus(ctx context.Context, status string, limit int) ([]Run, error) {
	return s.List(ctx, ListOptions{Status: status, Limit: limit})
}

// Ping 检查数据库连接
func (s *RunStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close 关闭连接池
func (s *RunStore) Close() error {
	return s.pool.Close()
}
