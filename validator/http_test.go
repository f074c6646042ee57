package validator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BaSui01/synthdoc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestValidator(t *testing.T, url string) *HTTPValidator {
	t.Helper()
	v, err := NewHTTPValidator(Config{
		URL:           url,
		ContentType:   "application/xml",
		SuccessMarker: "Valid",
		Timeout:       2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return v
}

func TestHTTPValidator_Valid(t *testing.T) {
	var gotBody, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte("  Valid\n"))
	}))
	defer server.Close()

	outcome, err := newTestValidator(t, server.URL).Validate(context.Background(), "<a/>")
	require.NoError(t, err)
	assert.True(t, outcome.IsValid)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, "<a/>", gotBody)
	assert.Equal(t, "application/xml", gotType)
}

func TestHTTPValidator_Invalid(t *testing.T) {
	report := "cvc-complex-type.2.4.a: Invalid content was found starting with element 'Foo'."
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(report))
	}))
	defer server.Close()

	outcome, err := newTestValidator(t, server.URL).Validate(context.Background(), "<Foo/>")
	require.NoError(t, err)
	assert.False(t, outcome.IsValid)
	assert.Equal(t, report, outcome.Message)
}

func TestHTTPValidator_MarkerMustMatchWholeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Valid? no: element missing"))
	}))
	defer server.Close()

	outcome, err := newTestValidator(t, server.URL).Validate(context.Background(), "<a/>")
	require.NoError(t, err)
	assert.False(t, outcome.IsValid)
}

func TestHTTPValidator_StatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("boom"))
			}))
			defer server.Close()

			_, err := newTestValidator(t, server.URL).Validate(context.Background(), "<a/>")
			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, types.ErrValidatorUnavailable, e.Code)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, "boom", e.Detail(types.DetailLastResponse))
		})
	}
}

func TestHTTPValidator_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestValidator(t, url).Validate(context.Background(), "<a/>")
	assert.True(t, types.IsErrorCode(err, types.ErrValidatorUnavailable))
}

func TestHTTPValidator_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestValidator(t, server.URL).Validate(ctx, "<a/>")
	assert.True(t, types.IsErrorCode(err, types.ErrValidatorUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewHTTPValidator_Errors(t *testing.T) {
	_, err := NewHTTPValidator(Config{SuccessMarker: "Valid"}, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrConfiguration))

	_, err = NewHTTPValidator(Config{URL: "http://x"}, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrConfiguration))

	v, err := NewHTTPValidator(Config{URL: "http://x", SuccessMarker: "OK"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", v.cfg.ContentType)
}
