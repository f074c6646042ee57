package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/synthdoc/config"
	"github.com/BaSui01/synthdoc/internal/metrics"
	"github.com/BaSui01/synthdoc/internal/server"
	"github.com/BaSui01/synthdoc/internal/telemetry"
	"github.com/BaSui01/synthdoc/llm"
	"github.com/BaSui01/synthdoc/llm/providers/openaicompat"
	"github.com/BaSui01/synthdoc/prompts"
	"github.com/BaSui01/synthdoc/repair"
	"github.com/BaSui01/synthdoc/store"
	"github.com/BaSui01/synthdoc/types"
	"github.com/BaSui01/synthdoc/validator"
	"github.com/BaSui01/synthdoc/workflow"
)

// =============================================================================
// 🧩 运行时依赖装配
// =============================================================================

// app 持有一次命令执行期间的全部依赖
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	promReg   *prometheus.Registry
	metrics   *metrics.Collector
	otel      *telemetry.Providers
	processes *workflow.Registry
	provider  llm.Provider
	validator repair.Validator
	store     *store.RunStore

	metricsSrv *server.Manager
}

// loadConfig 加载并校验配置
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader().WithValidator(func(c *config.Config) error { return c.Validate() })
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newApp 装配生成所需的全部依赖。调用方负责 close。
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: initLogger(cfg.Log)}

	a.logger.Debug("starting synthdoc",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	a.promReg = prometheus.NewRegistry()
	a.promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewCollectorWithRegistry(cfg.Metrics.Namespace, a.promReg, a.logger)

	otelProviders, err := telemetry.Init(cfg.Telemetry, a.logger)
	if err != nil {
		a.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	a.otel = otelProviders

	defs, err := prompts.Load(cfg.Generation.ProcessFiles...)
	if err != nil {
		a.close()
		return nil, err
	}
	if a.processes, err = workflow.NewRegistry(defs); err != nil {
		a.close()
		return nil, err
	}

	if a.provider, err = buildProvider(cfg.LLM, a.logger); err != nil {
		a.close()
		return nil, err
	}

	if a.validator, err = validator.NewHTTPValidator(validator.Config{
		URL:               cfg.Validator.URL,
		ContentType:       cfg.Validator.ContentType,
		SuccessMarker:     cfg.Validator.SuccessMarker,
		Timeout:           cfg.Validator.Timeout,
		RequestsPerSecond: cfg.Validator.RequestsPerSecond,
	}, a.logger); err != nil {
		a.close()
		return nil, err
	}

	if cfg.Database.Enabled {
		if a.store, err = store.Open(cfg.Database, a.logger, a.metrics); err != nil {
			a.close()
			return nil, fmt.Errorf("open run store: %w", err)
		}
	}

	if err := a.serveMetrics(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// buildProvider 注册配置中的生成模型并解析出默认 Provider
func buildProvider(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	registry := llm.NewProviderRegistry()

	switch cfg.Provider {
	case config.ProviderOpenAICompatible:
		registry.Register(cfg.Name, openaicompat.New(openaicompat.Config{
			ProviderName:      cfg.Name,
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			EndpointPath:      cfg.EndpointPath,
			DefaultModel:      cfg.Model,
			FallbackModel:     cfg.FallbackModel,
			MaxTokens:         cfg.MaxTokens,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}, logger))
	default:
		return nil, types.NewConfigurationError("unknown llm.provider %q", cfg.Provider)
	}

	if err := registry.SetDefault(cfg.Name); err != nil {
		return nil, types.NewConfigurationError("llm provider: %v", err)
	}
	return registry.Resolve("")
}

// newLoop 为 process 构建修复循环；配置了修复流程时第 1 次之后的尝试使用它
func (a *app) newLoop(process string) (*repair.Loop, error) {
	deps := workflow.Deps{Provider: a.provider, Logger: a.logger, Metrics: a.metrics}

	gen, err := a.processes.Conversation(process, deps)
	if err != nil {
		return nil, err
	}

	opts := []repair.Option{repair.WithMetrics(a.metrics)}
	if name := a.cfg.Generation.RepairProcess; name != "" && name != process {
		fix, err := a.processes.Conversation(name, deps)
		if err != nil {
			return nil, err
		}
		opts = append(opts, repair.WithRepairGenerator(fix))
	}
	if a.store != nil {
		opts = append(opts, repair.WithRecorder(a.store))
	}

	return repair.New(gen, a.validator, repair.Config{
		RetryLimit: a.cfg.Generation.RetryLimit,
		Schedule:   repair.Schedule(a.cfg.Generation.TemperatureSchedule),
	}, a.logger, opts...)
}

// serveMetrics 在配置了 metrics.addr 时暴露 /metrics
func (a *app) serveMetrics() error {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}

	cfg := server.DefaultConfig()
	cfg.Addr = a.cfg.Metrics.Addr
	a.metricsSrv = server.NewManager(server.MetricsHandler(a.promReg), cfg, a.logger)
	if err := a.metricsSrv.Start(); err != nil {
		a.metricsSrv = nil
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// close 按依赖的逆序释放资源
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("run store close failed", zap.Error(err))
		}
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
