package contract

import (
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
)

var (
	// ErrInvalidNotificationID 음수(센티널 포함) 식별자로 레코드를 등록하거나 조회하려 할 때 반환됩니다.
	ErrInvalidNotificationID = apperrors.New(apperrors.InvalidInput, "유효하지 않은 알림 ID입니다 (0 이상의 정수여야 합니다)")

	// ErrNotificationNotFound 레지스트리에 해당 알림이 존재하지 않을 때 반환됩니다.
	ErrNotificationNotFound = apperrors.New(apperrors.NotFound, "알림을 찾을 수 없습니다")
)
