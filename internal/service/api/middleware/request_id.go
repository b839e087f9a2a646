package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// RequestID 요청마다 X-Request-ID 헤더를 부여하는 미들웨어를 반환합니다.
//
// 클라이언트가 보낸 X-Request-ID가 있으면 그대로 사용하고, 없으면 UUIDv4를 생성합니다.
func RequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}
