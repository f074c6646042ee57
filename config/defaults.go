// =============================================================================
// 📦 synthdoc 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// ProviderOpenAICompatible 是内置的 OpenAI 兼容生成模型类型
const ProviderOpenAICompatible = "openai-compatible"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		LLM:        DefaultLLMConfig(),
		Generation: DefaultGenerationConfig(),
		Validator:  DefaultValidatorConfig(),
		Database:   DefaultDatabaseConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// DefaultLLMConfig 返回默认生成模型配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:      ProviderOpenAICompatible,
		Name:          "openai",
		BaseURL:       "https://api.openai.com",
		EndpointPath:  "/v1/chat/completions",
		FallbackModel: "gpt-4o-mini",
		MaxTokens:     4096,
		Timeout:       2 * time.Minute,
	}
}

// DefaultGenerationConfig 返回默认生成配置
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Process:             "sample-generator",
		RepairProcess:       "sample-repair",
		DocumentType:        "XML",
		RetryLimit:          4,
		TemperatureSchedule: []float64{0, 0.3, 0.6, 0.9, 1.2},
		RunTimeout:          10 * time.Minute,
		Parallelism:         4,
	}
}

// DefaultValidatorConfig 返回默认校验器配置
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		URL:           "http://localhost:8090/validate",
		ContentType:   "application/xml",
		SuccessMarker: "Valid",
		Timeout:       30 * time.Second,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         false,
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "synthdoc",
		Name:            "synthdoc.db",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,

		HealthCheckInterval: time.Minute,
		AutoMigrate:         true,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		Insecure:     true,
		ServiceName:  "synthdoc",
		SampleRate:   1.0,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "synthdoc",
	}
}
