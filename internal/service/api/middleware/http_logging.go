package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/darkkaiser/notification-reconciler/pkg/strutil"
	"github.com/labstack/echo/v4"
)

// HTTPLogger 요청마다 접근 로그 한 줄을 남기는 미들웨어를 반환합니다.
// 5xx 응답은 Error, 4xx 응답은 Warn, 나머지는 Info 레벨로 기록합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// 응답 상태 코드가 확정되도록 에러를 여기서 처리합니다.
			if err := next(c); err != nil {
				c.Error(err)
			}

			entry := applog.WithComponentAndFields(constants.ComponentMiddleware, accessLogFields(c, time.Since(start)))
			switch status := c.Response().Status; {
			case status >= http.StatusInternalServerError:
				entry.Error("HTTP 요청")
			case status >= http.StatusBadRequest:
				entry.Warn("HTTP 요청")
			default:
				entry.Info("HTTP 요청")
			}

			return nil
		}
	}
}

func accessLogFields(c echo.Context, latency time.Duration) applog.Fields {
	req, res := c.Request(), c.Response()

	bytesIn := req.ContentLength
	if bytesIn < 0 {
		bytesIn = 0
	}

	return applog.Fields{
		"method":     req.Method,
		"uri":        maskSensitiveQueryParams(req.RequestURI),
		"route":      c.Path(),
		"host":       req.Host,
		"protocol":   req.Proto,
		"remote_ip":  c.RealIP(),
		"user_agent": req.UserAgent(),
		"status":     res.Status,
		"bytes_in":   bytesIn,
		"bytes_out":  res.Size,
		"latency_us": latency.Microseconds(),
		"request_id": res.Header().Get(echo.HeaderXRequestID),
	}
}

// maskSensitiveQueryParams constants.SensitiveQueryParams에 해당하는 쿼리 값을 가립니다.
// 파싱할 수 없는 URI는 그대로 돌려줍니다.
//
//	"/x?app_key=secret123" -> "/x?app_key=secr%2A%2A%2A"
func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.RawQuery == "" {
		return uri
	}

	q := u.Query()
	changed := false
	for _, name := range constants.SensitiveQueryParams {
		if v, ok := q[name]; ok {
			for i := range v {
				v[i] = strutil.Mask(v[i])
			}
			changed = true
		}
	}
	if !changed {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
