package mocks

import (
	"context"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockCanceller는 contract.Canceller 인터페이스의 Mock 구현체입니다.
type MockCanceller struct {
	mock.Mock
}

// Cancel 알림 취소 호출을 기록합니다.
func (m *MockCanceller) Cancel(ctx context.Context, id contract.NotificationID) {
	m.Called(ctx, id)
}

// MockExecutor는 contract.Executor 인터페이스의 Mock 구현체입니다.
type MockExecutor struct {
	mock.Mock
}

// Submit 작업 제출 호출을 기록합니다.
func (m *MockExecutor) Submit(task contract.Task) error {
	args := m.Called(task)
	return args.Error(0)
}

// MockAlerter는 contract.Alerter 인터페이스의 Mock 구현체입니다.
type MockAlerter struct {
	mock.Mock
}

// Alert 운영 알림 호출을 기록합니다.
func (m *MockAlerter) Alert(ctx context.Context, message string) {
	m.Called(ctx, message)
}

// MockDismissalHandler는 contract.DismissalHandler 인터페이스의 Mock 구현체입니다.
type MockDismissalHandler struct {
	mock.Mock
}

// HandleDismissal 해제 신호 처리 호출을 기록합니다.
func (m *MockDismissalHandler) HandleDismissal(event contract.DismissalEvent) {
	m.Called(event)
}

// HandleRaw 원시 페이로드 처리 호출을 기록합니다.
func (m *MockDismissalHandler) HandleRaw(payload []byte, source contract.DismissalSource) {
	m.Called(payload, source)
}

// MockNotificationRegistry는 contract.NotificationRegistry 인터페이스의 Mock 구현체입니다.
type MockNotificationRegistry struct {
	mock.Mock
}

func (m *MockNotificationRegistry) Cancel(ctx context.Context, id contract.NotificationID) {
	m.Called(ctx, id)
}

func (m *MockNotificationRegistry) Track(ctx context.Context, id contract.NotificationID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRegistry) Get(ctx context.Context, id contract.NotificationID) (contract.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(contract.Notification), args.Error(1)
}

func (m *MockNotificationRegistry) ActiveCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
