package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Helpers
// =============================================================================

const testWaitTimeout = 2 * time.Second

// startPool Pool을 시작하고, 테스트 종료 시 종료와 대기를 정리 함수로 등록합니다.
func startPool(t *testing.T, opts Options) (*Pool, context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	p := New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, p.Start(ctx, wg))

	t.Cleanup(func() {
		cancel()
		waitGroupWithTimeout(t, wg)
	})

	return p, cancel, wg
}

func waitGroupWithTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testWaitTimeout):
		t.Fatal("WaitGroup 대기 시간 초과")
	}
}

// blockWorker 워커 하나를 점유하는 작업을 제출하고 작업이 시작될 때까지 기다립니다.
// 반환된 함수를 호출하면 점유가 해제됩니다.
func blockWorker(t *testing.T, p *Pool) func() {
	t.Helper()

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))

	select {
	case <-started:
	case <-time.After(testWaitTimeout):
		t.Fatal("점유 작업이 시작되지 않았습니다")
	}

	var once sync.Once
	return func() { once.Do(func() { close(release) }) }
}

func defaultOptions() Options {
	return Options{
		Workers:         2,
		QueueSize:       8,
		ShutdownTimeout: time.Second,
	}
}

// =============================================================================
// Initialization
// =============================================================================

func TestNew_NormalizesOptions(t *testing.T) {
	tests := []struct {
		name          string
		opts          Options
		wantWorkers   int
		wantQueueSize int
	}{
		{"성공: 지정한 값 그대로 사용", Options{Workers: 4, QueueSize: 16}, 4, 16},
		{"보정: 0 이하의 워커 수", Options{Workers: 0, QueueSize: 16}, 1, 16},
		{"보정: 0 이하의 큐 크기", Options{Workers: 2, QueueSize: -5}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.opts)

			stats := p.Stats()
			assert.Equal(t, tt.wantWorkers, stats.Workers)
			assert.Equal(t, tt.wantQueueSize, stats.Capacity)
			assert.Zero(t, stats.Queued)
		})
	}
}

func TestPool_SubmitBeforeStart(t *testing.T) {
	p := New(defaultOptions())

	err := p.Submit(func(context.Context) {})

	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, p.Health(), ErrNotRunning)
	assert.Equal(t, int64(1), p.Stats().Rejected)
}

func TestPool_SubmitNilTask(t *testing.T) {
	p, _, _ := startPool(t, defaultOptions())

	assert.ErrorIs(t, p.Submit(nil), ErrNilTask)
}

func TestPool_StartTwice(t *testing.T) {
	p, _, _ := startPool(t, defaultOptions())

	wg := &sync.WaitGroup{}
	wg.Add(1)
	err := p.Start(context.Background(), wg)

	require.NoError(t, err)
	// 두 번째 Start는 즉시 wg.Done()을 호출해야 합니다.
	waitGroupWithTimeout(t, wg)
	assert.NoError(t, p.Health())
}

// =============================================================================
// Submit
// =============================================================================

func TestPool_Submit_RunsTask(t *testing.T) {
	p, _, _ := startPool(t, defaultOptions())

	const n = 50

	var executed atomic.Int32
	var tasksWG sync.WaitGroup
	tasksWG.Add(n)
	for i := 0; i < n; i++ {
		for {
			err := p.Submit(func(context.Context) {
				defer tasksWG.Done()
				executed.Add(1)
			})
			if err == nil {
				break
			}
			require.ErrorIs(t, err, ErrQueueFull)
			time.Sleep(time.Millisecond)
		}
	}

	waitGroupWithTimeout(t, &tasksWG)
	assert.Equal(t, int32(n), executed.Load())
}

func TestPool_Submit_QueueFull(t *testing.T) {
	p, _, _ := startPool(t, Options{
		Workers:         1,
		QueueSize:       1,
		ShutdownTimeout: time.Second,
	})

	release := blockWorker(t, p)
	defer release()

	// 워커가 점유된 상태에서 큐(크기 1)를 채웁니다.
	require.NoError(t, p.Submit(func(context.Context) {}))

	start := time.Now()
	err := p.Submit(func(context.Context) {})

	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "Submit은 큐가 가득 차도 대기하지 않아야 합니다")
	assert.Equal(t, 1, p.Stats().Queued)
	assert.Equal(t, int64(1), p.Stats().Rejected)
}

func TestPool_Submit_PanicDoesNotKillWorker(t *testing.T) {
	p, _, _ := startPool(t, Options{
		Workers:         1,
		QueueSize:       4,
		ShutdownTimeout: time.Second,
	})

	require.NoError(t, p.Submit(func(context.Context) {
		panic("의도된 패닉")
	}))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(testWaitTimeout):
		t.Fatal("패닉 이후 워커가 다음 작업을 처리하지 않았습니다")
	}

	assert.Eventually(t, func() bool {
		stats := p.Stats()
		return stats.Panicked == 1 && stats.Completed == 1
	}, testWaitTimeout, 5*time.Millisecond)
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestPool_Close(t *testing.T) {
	p, _, wg := startPool(t, defaultOptions())

	p.Close()
	p.Close() // 중복 호출에도 panic이 발생하지 않아야 합니다.

	select {
	case <-p.Done():
	default:
		t.Fatal("Close 이후 Done 채널이 닫혀야 합니다")
	}

	waitGroupWithTimeout(t, wg)

	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrClosed)
	assert.ErrorIs(t, p.Health(), ErrClosed)

	wg2 := &sync.WaitGroup{}
	wg2.Add(1)
	assert.ErrorIs(t, p.Start(context.Background(), wg2), ErrClosed)
	waitGroupWithTimeout(t, wg2)
}

func TestPool_Shutdown_DrainsQueuedTasks(t *testing.T) {
	p, cancel, wg := startPool(t, Options{
		Workers:         1,
		QueueSize:       10,
		ShutdownTimeout: time.Second,
	})

	release := blockWorker(t, p)

	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(context.Context) { executed.Add(1) }))
	}

	cancel()

	// 종료가 시작된 뒤에는 새로운 작업을 받지 않습니다.
	assert.Eventually(t, func() bool {
		return p.Submit(func(context.Context) {}) != nil
	}, testWaitTimeout, time.Millisecond)

	release()
	waitGroupWithTimeout(t, wg)

	assert.Equal(t, int32(5), executed.Load(), "종료 유예 시간 내에 큐에 남은 작업은 모두 처리되어야 합니다")
	assert.Zero(t, p.Stats().Dropped)
}

func TestPool_Shutdown_DropsTasksAfterTimeout(t *testing.T) {
	p, cancel, wg := startPool(t, Options{
		Workers:         1,
		QueueSize:       10,
		ShutdownTimeout: 30 * time.Millisecond,
	})

	// 작업 컨텍스트가 취소될 때까지 워커를 점유합니다.
	_ = blockWorker(t, p)

	var executed atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func(context.Context) { executed.Add(1) }))
	}

	cancel()
	waitGroupWithTimeout(t, wg)

	assert.Zero(t, executed.Load())
	assert.Equal(t, int64(3), p.Stats().Dropped)
}

func TestPool_ConcurrentSubmitAndClose(t *testing.T) {
	p, _, wg := startPool(t, Options{
		Workers:         4,
		QueueSize:       16,
		ShutdownTimeout: time.Second,
	})

	var submitters sync.WaitGroup
	for i := 0; i < 20; i++ {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			for j := 0; j < 100; j++ {
				err := p.Submit(func(context.Context) {})
				if err != nil {
					assert.True(t, err == ErrQueueFull || err == ErrClosed, "예상하지 못한 에러: %v", err)
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	p.Close()

	submitters.Wait()
	waitGroupWithTimeout(t, wg)

	stats := p.Stats()
	assert.Equal(t, stats.Submitted, stats.Completed+stats.Dropped, "큐에 등록된 작업은 실행되거나 버려져야 합니다")
}

// =============================================================================
// Inline
// =============================================================================

func TestInline_Submit(t *testing.T) {
	t.Run("성공: 호출자 고루틴에서 동기 실행", func(t *testing.T) {
		type ctxKey struct{}
		ctx := context.WithValue(context.Background(), ctxKey{}, "inline")

		e := NewInline(ctx)

		var got any
		require.NoError(t, e.Submit(func(taskCtx context.Context) {
			got = taskCtx.Value(ctxKey{})
		}))
		assert.Equal(t, "inline", got)
	})

	t.Run("실패: 패닉 복구", func(t *testing.T) {
		e := NewInline(nil)

		err := e.Submit(func(context.Context) { panic("boom") })

		assert.ErrorIs(t, err, ErrPanicRecovered)
	})

	t.Run("실패: nil 작업", func(t *testing.T) {
		assert.ErrorIs(t, NewInline(context.Background()).Submit(nil), ErrNilTask)
	})
}

var (
	_ contract.Executor = (*Pool)(nil)
	_ contract.Executor = (*Inline)(nil)
)
