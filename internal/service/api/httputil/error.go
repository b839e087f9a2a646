// Package httputil Echo 핸들러에서 공통으로 사용하는 에러 변환 및 응답 헬퍼를 제공합니다.
package httputil

import (
	"errors"
	"net/http"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/domain"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/response"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// echo.HTTPError는 그대로 상태 코드를 사용하고, 핸들러가 반환한 AppError는
// 에러 타입에 맞는 HTTP 상태 코드로 변환하여 표준 ErrorResponse JSON으로 응답합니다.
func ErrorHandler(err error, c echo.Context) {
	code, message := resolveError(err)

	// 404 에러는 사용자 친화적인 한국어 메시지로 통일
	if code == http.StatusNotFound && message == "Not Found" {
		message = constants.ErrMsgNotFound
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if application, ok := c.Get(constants.ContextKeyApplication).(*domain.Application); ok {
		fields["application_id"] = application.ID
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Error(constants.LogMsgHTTP5xxServerError)
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Warn(constants.LogMsgHTTP4xxClientError)
	}

	// 이미 응답이 전송된 경우 추가 응답 시도하지 않음
	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// resolveError 에러로부터 HTTP 상태 코드와 응답 메시지를 결정합니다.
func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch msg := he.Message.(type) {
		case string:
			return he.Code, msg
		case response.ErrorResponse:
			return he.Code, msg.Message
		default:
			return he.Code, http.StatusText(he.Code)
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case apperrors.InvalidInput, apperrors.ParsingFailed:
			return http.StatusBadRequest, appErr.Message()
		case apperrors.Unauthorized:
			return http.StatusUnauthorized, appErr.Message()
		case apperrors.Forbidden:
			return http.StatusForbidden, appErr.Message()
		case apperrors.NotFound:
			return http.StatusNotFound, appErr.Message()
		case apperrors.Conflict:
			return http.StatusConflict, appErr.Message()
		case apperrors.Unavailable, apperrors.Timeout:
			return http.StatusServiceUnavailable, constants.ErrMsgServiceUnavailable
		}
	}

	return http.StatusInternalServerError, constants.ErrMsgInternalServer
}
