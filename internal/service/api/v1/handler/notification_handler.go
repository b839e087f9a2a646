package handler

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/auth"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	apihandler "github.com/darkkaiser/notification-reconciler/internal/service/api/handler"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/httputil"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/response"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/v1/model/request"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/dismissal"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/darkkaiser/notification-reconciler/pkg/maputil"
	"github.com/labstack/echo/v4"
)

// DismissNotificationHandler 경로로 전달된 알림 ID의 해제 신호를 접수합니다.
//
//	POST /api/v1/notifications/:id/dismissal
//
// 해제 신호 처리는 비동기로 위임되므로 항상 202 Accepted로 응답합니다.
// 정수로 해석할 수 없는 ID는 센티널로 변환되어 처리기에서 걸러집니다.
func (h *Handler) DismissNotificationHandler(c echo.Context) error {
	id := dismissal.ParseID(c.Param(constants.PathParamNotificationID))

	h.dismissalHandler.HandleDismissal(contract.DismissalEvent{
		NotificationID: id,
		Source:         contract.DismissalSourceHTTP,
		ReceivedAt:     h.now(),
	})

	return httputil.Accepted(c)
}

// DismissHandler JSON 본문으로 전달된 해제 신호를 접수합니다.
//
//	POST /api/v1/dismissals
//	{"application_id": "mobile-app", "notification_id": 42}
//
// notification_id가 없거나 정수가 아니어도 요청 자체는 202로 접수됩니다.
// 본문이 JSON 객체가 아니면 400으로 거절하며, 숫자만 있는 본문(42)도 여기에 해당합니다.
func (h *Handler) DismissHandler(c echo.Context) error {
	id := contract.SentinelNotificationID

	var body map[string]any
	decoder := json.NewDecoder(c.Request().Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return httputil.NewBadRequestError("잘못된 JSON 형식입니다")
	}

	req, err := maputil.Decode[request.DismissalRequest](body, maputil.WithStrictTypes())
	if err != nil {
		h.log(c).WithError(err).Debug("해제 신호 본문을 해석할 수 없어 센티널로 처리합니다")
	} else {
		id = dismissal.ParseID(req.NotificationID.String())
	}

	h.dismissalHandler.HandleDismissal(contract.DismissalEvent{
		NotificationID: id,
		Source:         contract.DismissalSourceHTTP,
		ReceivedAt:     h.now(),
	})

	return httputil.Accepted(c)
}

// TrackNotificationHandler 게시된 알림을 레지스트리에 활성 상태로 등록합니다.
//
//	PUT /api/v1/notifications/:id
func (h *Handler) TrackNotificationHandler(c echo.Context) error {
	req, err := h.bindPath(c)
	if err != nil {
		return err
	}

	app := auth.MustApplication(c)

	if err := h.registry.Track(c.Request().Context(), contract.NotificationID(req.NotificationID)); err != nil {
		return err
	}

	h.log(c).WithFields(applog.Fields{
		"application_id":  app.ID,
		"notification_id": req.NotificationID,
	}).Info("알림 등록 완료")

	return httputil.Success(c)
}

// GetNotificationHandler 알림 레코드의 현재 상태를 조회합니다.
//
//	GET /api/v1/notifications/:id
func (h *Handler) GetNotificationHandler(c echo.Context) error {
	req, err := h.bindPath(c)
	if err != nil {
		return err
	}

	n, err := h.registry.Get(c.Request().Context(), contract.NotificationID(req.NotificationID))
	if err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	resp := response.NotificationResponse{
		ResultCode: 0,
		ID:         int64(n.ID),
		State:      string(n.State),
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
	if n.CancelledAt != nil {
		resp.CancelledAt = n.CancelledAt.Format(time.RFC3339)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) bindPath(c echo.Context) (*request.NotificationPathRequest, error) {
	req := new(request.NotificationPathRequest)
	if err := c.Bind(req); err != nil {
		return nil, ErrInvalidPathID
	}
	if err := apihandler.ValidateRequest(req); err != nil {
		h.log(c).WithFields(applog.Fields{
			"notification_id": req.NotificationID,
		}).Debug("알림 ID 검증 실패")

		return nil, httputil.NewBadRequestError(apihandler.FormatValidationError(err))
	}

	return req, nil
}
