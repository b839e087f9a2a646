package middleware

import (
	"mime"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// ValidateContentType 본문이 있는 요청의 미디어 타입이 mediaType과 같은지 검사합니다.
// charset 같은 파라미터는 무시하고, 본문이 없는 요청은 그대로 통과시킵니다.
func ValidateContentType(mediaType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			header := req.Header.Get(echo.HeaderContentType)
			if actual, _, err := mime.ParseMediaType(header); err == nil && actual == mediaType {
				return next(c)
			}

			applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
				"request_id":   c.Response().Header().Get(echo.HeaderXRequestID),
				"path":         req.URL.Path,
				"content_type": header,
				"expected":     mediaType,
			}).Warn("지원하지 않는 Content-Type 요청")

			return ErrUnsupportedMediaType
		}
	}
}
