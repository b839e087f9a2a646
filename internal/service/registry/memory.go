package registry

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
)

// memoryStore 프로세스 메모리에 레코드를 보관하는 Store 구현체입니다. 재시작하면 모든 레코드가 사라집니다.
type memoryStore struct {
	mu      sync.RWMutex
	records map[contract.NotificationID]*contract.Notification
}

// NewMemoryStore 메모리 기반 Store를 생성합니다.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[contract.NotificationID]*contract.Notification),
	}
}

func (s *memoryStore) Track(ctx context.Context, id contract.NotificationID, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = &contract.Notification{
		ID:        id,
		State:     contract.NotificationStateActive,
		CreatedAt: now,
	}

	return nil
}

func (s *memoryStore) Cancel(ctx context.Context, id contract.NotificationID, now time.Time) (CancelResult, error) {
	if err := ctx.Err(); err != nil {
		return CancelResultUnknown, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.records[id]
	if !ok {
		return CancelResultUnknown, nil
	}
	if n.State == contract.NotificationStateCancelled {
		return CancelResultAlreadyCancelled, nil
	}

	cancelledAt := now
	n.State = contract.NotificationStateCancelled
	n.CancelledAt = &cancelledAt

	return CancelResultCancelled, nil
}

func (s *memoryStore) Get(ctx context.Context, id contract.NotificationID) (contract.Notification, error) {
	if err := ctx.Err(); err != nil {
		return contract.Notification{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.records[id]
	if !ok {
		return contract.Notification{}, contract.ErrNotificationNotFound
	}

	// 호출자가 내부 상태를 변경하지 못하도록 복사본을 반환합니다.
	cp := *n
	if n.CancelledAt != nil {
		t := *n.CancelledAt
		cp.CancelledAt = &t
	}
	return cp, nil
}

func (s *memoryStore) ActiveCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.records {
		if n.State == contract.NotificationStateActive {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, n := range s.records {
		if n.State == contract.NotificationStateCancelled && n.CancelledAt != nil && n.CancelledAt.Before(cutoff) {
			delete(s.records, id)
			purged++
		}
	}
	return purged, nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *memoryStore) Close() error {
	return nil
}
