package handler

import (
	"github.com/darkkaiser/notification-reconciler/internal/service/api/httputil"
)

var (
	// ErrInvalidPathID 경로의 알림 ID가 정수가 아닐 때 반환됩니다.
	ErrInvalidPathID = httputil.NewBadRequestError("알림 ID는 정수여야 합니다")

	// ErrNotificationNotFound 등록되지 않은 알림을 조회했을 때 반환됩니다.
	ErrNotificationNotFound = httputil.NewNotFoundError("알림을 찾을 수 없습니다")
)
