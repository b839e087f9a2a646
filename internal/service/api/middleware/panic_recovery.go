package middleware

import (
	"runtime/debug"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/domain"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// PanicRecovery 이후 체인에서 발생한 panic을 에러로 바꿔 전역 에러 핸들러에 넘깁니다.
// 응답 코드는 에러 핸들러가 500으로 결정합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				if e, ok := r.(error); ok {
					err = e
				} else {
					err = newErrPanicRecovered(r)
				}

				fields := applog.Fields{
					"error":      err,
					"method":     c.Request().Method,
					"path":       c.Request().URL.Path,
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"stack":      string(debug.Stack()),
				}
				if app, ok := c.Get(constants.ContextKeyApplication).(*domain.Application); ok {
					fields["application_id"] = app.ID
				}
				applog.WithComponentAndFields(constants.ComponentMiddleware, fields).Error("요청 처리 중 panic 복구")

				c.Error(err)
				err = nil
			}()

			return next(c)
		}
	}
}
