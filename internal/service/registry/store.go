package registry

import (
	"context"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
)

// CancelResult 저장소에 대한 취소 요청의 처리 결과입니다.
type CancelResult int

const (
	// CancelResultCancelled 활성 상태였던 알림이 이번 요청으로 취소되었습니다.
	CancelResultCancelled CancelResult = iota

	// CancelResultAlreadyCancelled 이미 취소된 알림입니다. 상태는 변경되지 않습니다.
	CancelResultAlreadyCancelled

	// CancelResultUnknown 레지스트리에 없는 알림입니다. 레코드는 생성되지 않습니다.
	CancelResultUnknown
)

func (r CancelResult) String() string {
	switch r {
	case CancelResultCancelled:
		return "cancelled"
	case CancelResultAlreadyCancelled:
		return "already_cancelled"
	case CancelResultUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Store 알림 레코드의 영속 계층입니다.
//
// 구현체는 동시 호출에 안전해야 하며, Cancel은 활성 상태의 레코드에 대해서만 상태를 변경해야 합니다.
type Store interface {
	Track(ctx context.Context, id contract.NotificationID, now time.Time) error
	Cancel(ctx context.Context, id contract.NotificationID, now time.Time) (CancelResult, error)
	Get(ctx context.Context, id contract.NotificationID) (contract.Notification, error)
	ActiveCount(ctx context.Context) (int, error)

	// Purge cutoff 이전에 취소된 레코드를 삭제하고 삭제된 개수를 반환합니다. 활성 레코드는 삭제하지 않습니다.
	Purge(ctx context.Context, cutoff time.Time) (int, error)

	Ping(ctx context.Context) error
	Close() error
}
