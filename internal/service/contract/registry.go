package contract

import (
	"context"
	"time"
)

// NotificationState 레지스트리에 기록된 알림의 상태입니다.
type NotificationState string

const (
	NotificationStateActive    NotificationState = "active"
	NotificationStateCancelled NotificationState = "cancelled"
)

// Notification 레지스트리가 관리하는 알림 레코드입니다.
type Notification struct {
	ID          NotificationID    `json:"id"`
	State       NotificationState `json:"state"`
	CreatedAt   time.Time         `json:"created_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// Canceller 알림 취소 기능을 제공하는 인터페이스입니다.
//
// Cancel은 모든 식별자(센티널, 알 수 없는 ID, 이미 취소된 ID 포함)에 대해 정의된 전함수이며
// 멱등적입니다. 내부 실패는 관찰 가능한 에러로 반환되지 않습니다.
type Canceller interface {
	Cancel(ctx context.Context, id NotificationID)
}

// NotificationRegistry 현재 표시 중인 알림의 장부입니다.
type NotificationRegistry interface {
	Canceller

	// Track 표시된 알림을 활성 상태로 등록합니다. 취소된 알림을 다시 등록하면 활성 상태로 되돌립니다.
	Track(ctx context.Context, id NotificationID) error

	// Get 알림 레코드를 조회합니다. 없으면 NotFound 에러를 반환합니다.
	Get(ctx context.Context, id NotificationID) (Notification, error)

	// ActiveCount 활성 상태인 알림의 개수를 반환합니다.
	ActiveCount(ctx context.Context) (int, error)
}
