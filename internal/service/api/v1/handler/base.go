// Package handler v1 API의 HTTP 요청 핸들러를 제공합니다.
package handler

import (
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// Handler v1 API 요청을 해제 신호 처리기와 알림 레지스트리에 연결합니다.
type Handler struct {
	dismissalHandler contract.DismissalHandler
	registry         contract.NotificationRegistry

	now func() time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
//
// Panics:
//   - dismissalHandler 또는 registry가 nil인 경우
func NewHandler(dismissalHandler contract.DismissalHandler, registry contract.NotificationRegistry) *Handler {
	if dismissalHandler == nil {
		panic("DismissalHandler는 필수입니다")
	}
	if registry == nil {
		panic("NotificationRegistry는 필수입니다")
	}

	return &Handler{
		dismissalHandler: dismissalHandler,
		registry:         registry,

		now: time.Now,
	}
}

// log 공통 로깅 필드가 설정된 로거 엔트리를 반환합니다.
func (h *Handler) log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":   c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}
