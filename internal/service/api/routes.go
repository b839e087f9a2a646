package api

import (
	"github.com/darkkaiser/notification-reconciler/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 인증이 필요 없는 전역 시스템 라우트를 등록합니다.
//
//   - GET /health
//   - GET /version
func RegisterRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
}
