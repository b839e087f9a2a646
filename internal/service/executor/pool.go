// Package executor 취소 작업처럼 호출자와 분리되어 실행되어야 하는 작업을 위한 실행기를 제공합니다.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
)

const component = "executor.pool"

// Options Pool 생성 옵션입니다.
type Options struct {
	Workers         int           // 동시에 작업을 처리하는 워커 고루틴 수
	QueueSize       int           // 대기 중인 작업을 보관하는 큐의 크기
	ShutdownTimeout time.Duration // 종료 시 큐에 남은 작업을 처리하는 최대 시간
}

// Pool 고정된 수의 워커와 크기가 제한된 큐로 구성된 실행기입니다.
//
// 생명주기:
//   - New로 생성하고 Start로 워커를 구동합니다.
//   - Start에 전달한 ctx가 취소되거나 Close가 호출되면 새로운 작업을 거부합니다.
//   - 이미 큐에 들어간 작업은 ShutdownTimeout 동안 계속 처리되고, 이후 남은 작업은 버려집니다.
//   - 모든 워커가 종료되면 wg.Done()이 호출됩니다.
type Pool struct {
	workers         int
	shutdownTimeout time.Duration

	taskC chan contract.Task

	// mu running, closed, done 상태를 보호합니다.
	// 채널 전송 자체는 락 밖에서 수행합니다.
	mu      sync.RWMutex
	running bool
	closed  bool
	done    chan struct{}

	// pendingSubmitsWG 큐 전송을 시도 중인 Submit 호출을 추적합니다.
	// 워커는 종료 신호를 받은 뒤 이 카운터가 0이 될 때까지 기다린 다음 큐를 비웁니다.
	pendingSubmitsWG sync.WaitGroup

	workersWG sync.WaitGroup

	// taskCtx 작업에 전달되는 컨텍스트입니다. 종료 유예 시간이 지나면 취소됩니다.
	taskCtx     context.Context
	cancelTasks context.CancelFunc

	drainExpired atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panicked  atomic.Int64
	dropped   atomic.Int64
}

// New 새로운 Pool을 생성합니다. 0 이하의 값은 1로 보정됩니다.
func New(opts Options) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	taskCtx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:         opts.Workers,
		shutdownTimeout: opts.ShutdownTimeout,

		taskC: make(chan contract.Task, opts.QueueSize),
		done:  make(chan struct{}),

		taskCtx:     taskCtx,
		cancelTasks: cancel,
	}
}

// Start 워커 고루틴을 구동하고 종료 감시 루틴을 실행합니다.
func (p *Pool) Start(ctx context.Context, wg *sync.WaitGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	applog.WithComponent(component).Info("작업 실행기 시작중...")

	if p.running {
		defer wg.Done()
		applog.WithComponent(component).Warn("작업 실행기가 이미 시작됨!!!")
		return nil
	}
	if p.closed {
		defer wg.Done()
		return ErrClosed
	}

	for i := 0; i < p.workers; i++ {
		p.workersWG.Add(1)
		go p.worker()
	}

	go p.waitForShutdown(ctx, wg)

	p.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"workers":    p.workers,
		"queue_size": cap(p.taskC),
	}).Info("작업 실행기 시작됨")

	return nil
}

// Submit 작업을 큐에 등록합니다. 큐가 가득 찼으면 대기하지 않고 즉시 ErrQueueFull을 반환합니다.
func (p *Pool) Submit(task contract.Task) (err error) {
	taskC, done, cleanup, err := p.prepareSubmit(task)
	if err != nil {
		p.rejected.Add(1)
		return err
	}
	defer cleanup(&err)

	select {
	case taskC <- task:
		p.submitted.Add(1)
		return nil

	case <-done:
		p.rejected.Add(1)
		return ErrClosed

	default:
		p.rejected.Add(1)
		applog.WithComponentAndFields(component, applog.Fields{
			"queue_size": cap(taskC),
		}).Warn("작업 거부: 작업 큐 용량 초과 (Queue Full)")
		return ErrQueueFull
	}
}

// prepareSubmit 상태를 확인하고 전송에 필요한 채널을 복사해 반환합니다.
// 반환된 cleanup은 반드시 defer로 호출해야 합니다.
func (p *Pool) prepareSubmit(task contract.Task) (chan contract.Task, chan struct{}, func(*error), error) {
	if task == nil {
		return nil, nil, nil, ErrNilTask
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, nil, nil, ErrClosed
	}
	if !p.running {
		return nil, nil, nil, ErrNotRunning
	}

	p.pendingSubmitsWG.Add(1)

	cleanup := func(errPtr *error) {
		p.pendingSubmitsWG.Done()

		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
			}).Error("작업 제출 중 패닉 복구됨")

			if errPtr != nil {
				*errPtr = ErrPanicRecovered
			}
		}
	}

	return p.taskC, p.done, cleanup, nil
}

func (p *Pool) worker() {
	defer p.workersWG.Done()

	for {
		select {
		case task := <-p.taskC:
			p.run(task)

		case <-p.done:
			// 종료 신호 이후에도 이미 전송 중이던 Submit이 큐에 넣은 작업까지 처리합니다.
			p.pendingSubmitsWG.Wait()
			p.drain()
			return
		}
	}
}

// drain 큐가 빌 때까지 남은 작업을 처리합니다.
func (p *Pool) drain() {
	for {
		select {
		case task := <-p.taskC:
			p.run(task)

		default:
			return
		}
	}
}

// run 작업 하나를 실행합니다. 작업에서 발생한 panic은 해당 작업에서만 끝나며 워커는 계속 동작합니다.
// 종료 유예 시간이 지난 뒤 꺼낸 작업은 실행하지 않고 버립니다.
func (p *Pool) run(task contract.Task) {
	if p.drainExpired.Load() {
		p.dropped.Add(1)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
				"error": ErrPanicRecovered,
			}).Error("작업 실행 중 패닉 복구됨 (워커 유지)")
			return
		}
		p.completed.Add(1)
	}()

	task(p.taskCtx)
}

// Close 새로운 작업의 접수를 중단하고 워커에게 종료를 알립니다. 여러 번 호출해도 안전합니다.
//
// 데이터 채널(taskC)은 닫지 않습니다. 동시에 Submit 중인 고루틴이 닫힌 채널에 전송하여
// panic이 발생하는 것을 막기 위해 종료는 done 채널로만 전파합니다.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.done)
	}
}

// Done 실행기가 Close된 후 닫히는 채널을 반환합니다.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

func (p *Pool) waitForShutdown(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	select {
	case <-ctx.Done():
	case <-p.done:
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"queued": len(p.taskC),
	}).Info("작업 실행기 중지중...")

	p.Close()

	timer := time.AfterFunc(p.shutdownTimeout, func() {
		p.drainExpired.Store(true)
		p.cancelTasks()
	})

	p.workersWG.Wait()

	if !timer.Stop() {
		applog.WithComponentAndFields(component, applog.Fields{
			"shutdown_timeout": p.shutdownTimeout.String(),
			"dropped":          p.dropped.Load(),
		}).Warn("종료 유예 시간 초과: 남은 작업을 처리하지 않고 종료합니다")
	}
	p.cancelTasks()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	stats := p.Stats()
	applog.WithComponentAndFields(component, applog.Fields{
		"submitted": stats.Submitted,
		"completed": stats.Completed,
		"rejected":  stats.Rejected,
		"panicked":  stats.Panicked,
		"dropped":   stats.Dropped,
	}).Info("작업 실행기 중지됨")
}

// Stats 실행기의 누적 처리 통계입니다.
type Stats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	Capacity  int   `json:"capacity"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	Panicked  int64 `json:"panicked"`
	Dropped   int64 `json:"dropped"`
}

// Stats 현재까지의 처리 통계를 반환합니다.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Queued:    len(p.taskC),
		Capacity:  cap(p.taskC),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Panicked:  p.panicked.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// Health 작업을 받을 수 있는 상태이면 nil을 반환합니다.
func (p *Pool) Health() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case p.closed:
		return ErrClosed
	case !p.running:
		return ErrNotRunning
	}
	return nil
}
