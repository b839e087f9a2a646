package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRateLimiting(t *testing.T) {
	e := echo.New()
	handler := RateLimiting(1, 2)(okHandler)

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":12345"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	// 버스트 2개까지 허용
	require.NoError(t, call("10.0.0.1"))
	require.NoError(t, call("10.0.0.1"))

	err := call("10.0.0.1")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)

	// 다른 IP는 독립적으로 제한
	assert.NoError(t, call("10.0.0.2"))
}

func TestRateLimiting_InvalidArguments(t *testing.T) {
	assert.Panics(t, func() { RateLimiting(0, 1) })
	assert.Panics(t, func() { RateLimiting(1, 0) })
}

func TestVisitors_SweepIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := newVisitors(1, 1)
	v.now = func() time.Time { return now }

	require.True(t, v.allow("10.0.0.1"))
	require.True(t, v.allow("10.0.0.2"))
	assert.Equal(t, 2, v.size())

	// 10.0.0.2만 계속 요청을 보냅니다.
	now = now.Add(limiterIdleTTL)
	v.allow("10.0.0.2")

	now = now.Add(limiterSweepInterval)
	v.allow("10.0.0.2")

	assert.Equal(t, 1, v.size(), "유휴 IP의 버킷은 정리되어야 합니다")
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		expectErr   bool
	}{
		{name: "본문 없음은 통과", body: ""},
		{name: "JSON 본문", body: `{}`, contentType: "application/json; charset=UTF-8"},
		{name: "대소문자 무시", body: `{}`, contentType: "Application/JSON"},
		{name: "text/plain 거부", body: `42`, contentType: "text/plain", expectErr: true},
		{name: "Content-Type 누락 거부", body: `{}`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set(echo.HeaderContentType, tt.contentType)
			}

			err := ValidateContentType(echo.MIMEApplicationJSON)(okHandler)(e.NewContext(req, httptest.NewRecorder()))
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrUnsupportedMediaType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	setupTestLogger(t)

	tests := []struct {
		name  string
		value any
	}{
		{name: "문자열 panic", value: "boom"},
		{name: "에러 panic", value: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			err := PanicRecovery()(func(echo.Context) error {
				panic(tt.value)
			})(c)

			assert.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()

	t.Run("UUID 생성", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, RequestID()(okHandler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))

		_, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID))
		assert.NoError(t, err)
	})

	t.Run("클라이언트 값 유지", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRequestID, "client-request-1")
		rec := httptest.NewRecorder()
		require.NoError(t, RequestID()(okHandler)(e.NewContext(req, rec)))

		assert.Equal(t, "client-request-1", rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestHTTPLogger(t *testing.T) {
	buf := setupTestLogger(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/42/dismissal?app_key=secret123", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, HTTPLogger()(okHandler)(e.NewContext(req, rec)))

	out := buf.String()
	assert.Contains(t, out, "HTTP 요청")
	assert.NotContains(t, out, "secret123")
	assert.Contains(t, out, "secr")
}

func TestMaskSensitiveQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "민감 정보 없음", uri: "/api/v1/notifications/42?page=1", expected: "/api/v1/notifications/42?page=1"},
		{name: "app_key 마스킹", uri: "/x?app_key=secret123", expected: "/x?app_key=secr%2A%2A%2A"},
		{name: "짧은 token 마스킹", uri: "/x?token=abc", expected: "/x?token=%2A%2A%2A"},
		{name: "파싱 실패 시 원본", uri: "%zz", expected: "%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSensitiveQueryParams(tt.uri))
		})
	}
}

func TestLoggerAdapter_Level(t *testing.T) {
	logger := Logger{Logger: logrus.New()}

	tests := []struct {
		lvl log.Lvl
	}{
		{log.DEBUG}, {log.INFO}, {log.WARN}, {log.ERROR},
	}
	for _, tt := range tests {
		logger.SetLevel(tt.lvl)
		assert.Equal(t, tt.lvl, logger.Level())
	}

	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	assert.Same(t, buf, logger.Output())

	logger.SetLevel(log.INFO)
	logger.Infoj(log.JSON{"key": "value"})
	assert.Contains(t, buf.String(), "key=value")
}

func setupTestLogger(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	logger := applog.StandardLogger()
	prevOut, prevLevel := logger.Out, logger.Level

	applog.SetOutput(buf)
	applog.SetLevel(applog.DebugLevel)

	t.Cleanup(func() {
		applog.SetOutput(prevOut)
		applog.SetLevel(prevLevel)
	})

	return buf
}
