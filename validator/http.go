package validator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/synthdoc/internal/httpx"
	"github.com/BaSui01/synthdoc/repair"
	"github.com/BaSui01/synthdoc/types"
	"go.uber.org/zap"
)

// maxReportBytes 校验报告的最大读取长度
const maxReportBytes = 1 << 20

// Config HTTP 校验器配置
type Config struct {
	URL               string
	ContentType       string
	SuccessMarker     string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// HTTPValidator 调用外部校验服务
type HTTPValidator struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

var _ repair.Validator = (*HTTPValidator)(nil)

// NewHTTPValidator 创建 HTTP 校验器
func NewHTTPValidator(cfg Config, logger *zap.Logger) (*HTTPValidator, error) {
	if cfg.URL == "" {
		return nil, types.NewConfigurationError("validator: url is required")
	}
	if cfg.SuccessMarker == "" {
		return nil, types.NewConfigurationError("validator: success marker is required")
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "text/plain"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPValidator{
		cfg: cfg,
		client: httpx.NewClient(httpx.Options{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
		logger: logger.With(zap.String("component", "validator")),
	}, nil
}

// Validate POST 原始产物并解析结论
func (v *HTTPValidator) Validate(ctx context.Context, artifact string) (repair.Outcome, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.URL, strings.NewReader(artifact))
	if err != nil {
		return repair.Outcome{}, unavailable("build request", err)
	}
	req.Header.Set("Content-Type", v.cfg.ContentType)
	req.Header.Set("Accept", "text/plain")

	resp, err := v.client.Do(req)
	if err != nil {
		return repair.Outcome{}, unavailable("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return repair.Outcome{}, unavailable("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return repair.Outcome{}, types.NewError(types.ErrValidatorUnavailable,
			fmt.Sprintf("validator returned status %d", resp.StatusCode)).
			WithRetryable(resp.StatusCode >= 500).
			WithDetail(types.DetailLastResponse, types.Truncate(string(body), 4096))
	}

	report := string(body)
	outcome := repair.Outcome{IsValid: strings.TrimSpace(report) == v.cfg.SuccessMarker}
	if !outcome.IsValid {
		outcome.Message = report
	}

	v.logger.Debug("artifact validated",
		zap.Bool("valid", outcome.IsValid),
		zap.Int("artifact_bytes", len(artifact)),
		zap.Duration("duration", time.Since(start)),
	)
	return outcome, nil
}

func unavailable(msg string, err error) *types.Error {
	return types.NewError(types.ErrValidatorUnavailable, "validator "+msg).
		WithCause(err).
		WithRetryable(true)
}
