package dismissal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract/mocks"
	"github.com/darkkaiser/notification-reconciler/internal/service/executor"
	"github.com/darkkaiser/notification-reconciler/internal/service/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Helpers
// =============================================================================

// startPool 테스트용 Pool을 시작하고 종료 함수를 반환합니다.
func startPool(t *testing.T, opts executor.Options) (*executor.Pool, func()) {
	t.Helper()

	p := executor.New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, p.Start(ctx, wg))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
	t.Cleanup(stop)

	return p, stop
}

func event(id contract.NotificationID) contract.DismissalEvent {
	return contract.DismissalEvent{NotificationID: id, Source: contract.DismissalSourceHTTP}
}

// delayedCanceller Cancel 호출을 release가 닫힐 때까지 지연시킵니다.
type delayedCanceller struct {
	release chan struct{}

	mu    sync.Mutex
	calls []contract.NotificationID
	done  chan struct{}
}

func newDelayedCanceller() *delayedCanceller {
	return &delayedCanceller{
		release: make(chan struct{}),
		done:    make(chan struct{}, 16),
	}
}

func (c *delayedCanceller) Cancel(ctx context.Context, id contract.NotificationID) {
	select {
	case <-c.release:
	case <-ctx.Done():
	}

	c.mu.Lock()
	c.calls = append(c.calls, id)
	c.mu.Unlock()

	c.done <- struct{}{}
}

// =============================================================================
// Constructor
// =============================================================================

func TestNew_RequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { New(nil, &mocks.MockCanceller{}, nil, 0) })
	assert.Panics(t, func() { New(executor.NewInline(context.Background()), nil, nil, 0) })
	assert.NotPanics(t, func() { New(executor.NewInline(context.Background()), &mocks.MockCanceller{}, nil, 0) })
}

// =============================================================================
// HandleDismissal
// =============================================================================

func TestHandleDismissal_DispatchesCancel(t *testing.T) {
	canceller := &mocks.MockCanceller{}
	canceller.On("Cancel", mock.Anything, contract.NotificationID(42)).Once()

	l := New(executor.NewInline(context.Background()), canceller, nil, 0)

	l.HandleDismissal(event(42))

	canceller.AssertExpectations(t)
	assert.Equal(t, Stats{Received: 1, Dispatched: 1}, l.Stats())
}

func TestHandleDismissal_SentinelIsFilteredBeforeDispatch(t *testing.T) {
	tests := []struct {
		name string
		id   contract.NotificationID
	}{
		{"센티널", contract.SentinelNotificationID},
		{"음수", -42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mocks.MockExecutor{}
			canceller := &mocks.MockCanceller{}

			l := New(exec, canceller, nil, 0)

			assert.NotPanics(t, func() { l.HandleDismissal(event(tt.id)) })

			exec.AssertNotCalled(t, "Submit", mock.Anything)
			canceller.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
			assert.Equal(t, Stats{Received: 1, Filtered: 1}, l.Stats())
		})
	}
}

func TestHandleDismissal_DoesNotBlockOnSlowRegistry(t *testing.T) {
	pool, _ := startPool(t, executor.Options{
		Workers:         1,
		QueueSize:       4,
		ShutdownTimeout: time.Second,
	})
	canceller := newDelayedCanceller()

	l := New(pool, canceller, nil, 0)

	returned := make(chan struct{})
	go func() {
		l.HandleDismissal(event(42))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("HandleDismissal이 레지스트리 취소 완료를 기다렸습니다")
	}

	// 처리기가 반환된 시점에는 취소가 아직 끝나지 않았습니다.
	canceller.mu.Lock()
	assert.Empty(t, canceller.calls)
	canceller.mu.Unlock()

	close(canceller.release)

	select {
	case <-canceller.done:
	case <-time.After(2 * time.Second):
		t.Fatal("취소 작업이 실행되지 않았습니다")
	}

	canceller.mu.Lock()
	assert.Equal(t, []contract.NotificationID{42}, canceller.calls)
	canceller.mu.Unlock()
}

func TestHandleDismissal_ExecutorRejection(t *testing.T) {
	exec := &mocks.MockExecutor{}
	exec.On("Submit", mock.Anything).Return(executor.ErrQueueFull)

	canceller := &mocks.MockCanceller{}

	alerter := &mocks.MockAlerter{}
	alerter.On("Alert", mock.Anything, mock.AnythingOfType("string")).Once()

	l := New(exec, canceller, alerter, time.Hour)

	for i := 0; i < 3; i++ {
		assert.NotPanics(t, func() { l.HandleDismissal(event(42)) })
	}

	canceller.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	alerter.AssertExpectations(t)
	assert.Equal(t, Stats{Received: 3, Rejected: 3}, l.Stats())
}

func TestHandleDismissal_RejectionAlertThrottle(t *testing.T) {
	exec := &mocks.MockExecutor{}
	exec.On("Submit", mock.Anything).Return(executor.ErrClosed)

	alerter := &mocks.MockAlerter{}
	alerter.On("Alert", mock.Anything, mock.AnythingOfType("string")).Twice()

	l := New(exec, &mocks.MockCanceller{}, alerter, 10*time.Minute)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.HandleDismissal(event(1)) // 알림
	now = now.Add(5 * time.Minute)
	l.HandleDismissal(event(2)) // 억제
	now = now.Add(6 * time.Minute)
	l.HandleDismissal(event(3)) // 알림

	alerter.AssertExpectations(t)
}

func TestHandleDismissal_RecoversPanic(t *testing.T) {
	exec := &mocks.MockExecutor{}
	exec.On("Submit", mock.Anything).Run(func(mock.Arguments) {
		panic("executor fault")
	})

	l := New(exec, &mocks.MockCanceller{}, nil, 0)

	assert.NotPanics(t, func() { l.HandleDismissal(event(42)) })
	assert.Equal(t, int64(1), l.Stats().Recovered)
}

// =============================================================================
// HandleRaw
// =============================================================================

func TestHandleRaw(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantCancel   bool
		wantCancelID contract.NotificationID
	}{
		{"성공: JSON 페이로드", `{"notification_id":42}`, true, 42},
		{"성공: 10진수 페이로드", `42`, true, 42},
		{"무시: 센티널", `{"notification_id":-1}`, false, 0},
		{"무시: 잘못된 페이로드", `not-a-number`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canceller := &mocks.MockCanceller{}
			if tt.wantCancel {
				canceller.On("Cancel", mock.Anything, tt.wantCancelID).Once()
			}

			l := New(executor.NewInline(context.Background()), canceller, nil, 0)

			l.HandleRaw([]byte(tt.payload), contract.DismissalSourceNATS)

			canceller.AssertExpectations(t)
			if !tt.wantCancel {
				canceller.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
			}
		})
	}
}

// =============================================================================
// End-to-end with Pool and Registry
// =============================================================================

func TestListener_Scenario42_DuplicatesCollapse(t *testing.T) {
	ctx := context.Background()

	reg := registry.New(registry.NewMemoryStore())
	require.NoError(t, reg.Track(ctx, 42))
	require.NoError(t, reg.Track(ctx, 43))

	pool, stop := startPool(t, executor.Options{
		Workers:         4,
		QueueSize:       256,
		ShutdownTimeout: 2 * time.Second,
	})

	l := New(pool, reg, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.HandleDismissal(event(42))
		}()
	}
	wg.Wait()

	// 종료 시 큐에 남은 작업까지 처리됩니다.
	stop()

	n, err := reg.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, contract.NotificationStateCancelled, n.State)

	other, err := reg.Get(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, contract.NotificationStateActive, other.State, "다른 알림은 영향을 받지 않아야 합니다")

	stats := l.Stats()
	assert.Equal(t, int64(50), stats.Received)
	assert.Equal(t, stats.Received, stats.Dispatched+stats.Rejected)
}

func TestListener_ScenarioSentinel_NoRegistryCall(t *testing.T) {
	reg := &mocks.MockNotificationRegistry{}

	pool, stop := startPool(t, executor.Options{
		Workers:         1,
		QueueSize:       4,
		ShutdownTimeout: time.Second,
	})

	l := New(pool, reg, nil, 0)

	assert.NotPanics(t, func() { l.HandleDismissal(event(contract.SentinelNotificationID)) })
	stop()

	reg.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	assert.Zero(t, pool.Stats().Submitted)
}

func TestHandleDismissal_RejectionAlertDisabled(t *testing.T) {
	exec := &mocks.MockExecutor{}
	exec.On("Submit", mock.Anything).Return(executor.ErrQueueFull)

	alerter := &mocks.MockAlerter{}

	l := New(exec, &mocks.MockCanceller{}, alerter, 0)

	l.HandleDismissal(event(42))

	alerter.AssertNotCalled(t, "Alert", mock.Anything, mock.Anything)
}
