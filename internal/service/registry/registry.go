// Package registry 표시 중인 알림의 장부(Notification Registry)를 제공합니다.
//
// Registry는 Store에 대한 얇은 래퍼로, 식별자 검증과 ID 단위 직렬화, 로깅을 담당합니다.
// 해제 처리기가 호출하는 Cancel은 어떤 입력에 대해서도 에러를 반환하지 않는 멱등 연산입니다.
package registry

import (
	"context"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/pkg/concurrency"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
)

const component = "registry"

// Registry contract.NotificationRegistry 구현체입니다.
type Registry struct {
	store Store

	// idLocks 같은 ID에 대한 Track과 Cancel이 서로 끼어들지 않도록 직렬화합니다.
	idLocks *concurrency.KeyedMutex[contract.NotificationID]

	now func() time.Time
}

// New store를 사용하는 Registry를 생성합니다.
func New(store Store) *Registry {
	if store == nil {
		panic("registry: Store는 필수입니다")
	}

	return &Registry{
		store:   store,
		idLocks: concurrency.NewKeyedMutex[contract.NotificationID](),
		now:     time.Now,
	}
}

// NewStore 설정된 드라이버에 맞는 Store를 생성합니다.
func NewStore(ctx context.Context, cfg config.RegistryConfig) (Store, error) {
	switch cfg.Driver {
	case config.RegistryDriverMemory, "":
		return NewMemoryStore(), nil

	case config.RegistryDriverSQLite:
		return OpenSQLiteStore(ctx, cfg.DSN)

	default:
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 레지스트리 드라이버입니다 (driver: %s)", cfg.Driver)
	}
}

// Cancel 알림을 취소 상태로 기록합니다.
//
// 센티널과 음수 ID, 알 수 없는 ID, 이미 취소된 ID는 모두 아무것도 하지 않습니다.
// 저장소 오류는 로그로만 남기고 호출자에게 전파하지 않습니다.
func (r *Registry) Cancel(ctx context.Context, id contract.NotificationID) {
	if !id.IsValid() {
		applog.WithComponentAndFields(component, applog.Fields{
			"notification_id": int64(id),
		}).Debug("유효하지 않은 알림 ID의 취소 요청 무시")
		return
	}

	r.idLocks.Lock(id)
	defer r.idLocks.Unlock(id)

	result, err := r.store.Cancel(ctx, id, r.now())
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"notification_id": int64(id),
			"error":           err,
		}).Warn("알림 취소 실패: 저장소 오류")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"notification_id": int64(id),
		"result":          result.String(),
	}).Debug("알림 취소 요청 처리 완료")
}

// Track 표시된 알림을 활성 상태로 등록합니다.
func (r *Registry) Track(ctx context.Context, id contract.NotificationID) error {
	if !id.IsValid() {
		return contract.ErrInvalidNotificationID
	}

	r.idLocks.Lock(id)
	defer r.idLocks.Unlock(id)

	if err := r.store.Track(ctx, id, r.now()); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"notification_id": int64(id),
	}).Debug("알림 등록 완료")

	return nil
}

// Get 알림 레코드를 조회합니다.
func (r *Registry) Get(ctx context.Context, id contract.NotificationID) (contract.Notification, error) {
	if !id.IsValid() {
		return contract.Notification{}, contract.ErrInvalidNotificationID
	}
	return r.store.Get(ctx, id)
}

// ActiveCount 활성 상태인 알림의 개수를 반환합니다.
func (r *Registry) ActiveCount(ctx context.Context) (int, error) {
	return r.store.ActiveCount(ctx)
}

// Purge cutoff 이전에 취소된 레코드를 삭제합니다.
func (r *Registry) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	purged, err := r.store.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"cutoff": cutoff.Format(time.RFC3339),
		"purged": purged,
	}).Info("취소된 알림 정리 완료")

	return purged, nil
}

// Health 저장소에 접근할 수 있으면 nil을 반환합니다.
func (r *Registry) Health(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Close 저장소를 닫습니다. 모든 서비스가 종료된 뒤에 호출해야 합니다.
func (r *Registry) Close() error {
	if err := r.store.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "레지스트리 저장소 종료 실패")
	}
	return nil
}

var _ contract.NotificationRegistry = (*Registry)(nil)
