// Package v1 해제 신호 API의 v1 라우트를 정의합니다.
//
// 주요 엔드포인트:
//   - POST /api/v1/notifications/:id/dismissal - 경로 ID로 해제 신호 전달
//   - POST /api/v1/dismissals                  - JSON 본문으로 해제 신호 전달
//   - PUT  /api/v1/notifications/:id           - 알림 등록
//   - GET  /api/v1/notifications/:id           - 알림 상태 조회
//
// 모든 엔드포인트는 애플리케이션 인증(app_key)을 요구합니다.
package v1

import (
	"github.com/darkkaiser/notification-reconciler/internal/service/api/auth"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/middleware"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes Echo 인스턴스에 /api/v1 라우트를 등록합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, authenticator *auth.Authenticator) {
	v1Group := e.Group("/api/v1")
	v1Group.Use(middleware.RequireAuthentication(authenticator))

	v1Group.POST("/notifications/:id/dismissal", h.DismissNotificationHandler)
	v1Group.POST("/dismissals", h.DismissHandler,
		middleware.ValidateContentType(echo.MIMEApplicationJSON),
	)

	v1Group.PUT("/notifications/:id", h.TrackNotificationHandler)
	v1Group.GET("/notifications/:id", h.GetNotificationHandler)
}
