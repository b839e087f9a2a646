package executor

import (
	"context"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
)

// Inline 작업을 호출자 고루틴에서 즉시 실행하는 실행기입니다.
// 취소 작업을 동기적으로 검증해야 하는 테스트와 CLI 단발 실행에 사용합니다.
type Inline struct {
	ctx context.Context
}

// NewInline 작업에 ctx를 전달하는 Inline 실행기를 생성합니다. nil이면 context.Background()를 사용합니다.
func NewInline(ctx context.Context) *Inline {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Inline{ctx: ctx}
}

// Submit 작업을 즉시 실행합니다. 작업에서 발생한 panic은 복구되어 ErrPanicRecovered로 반환됩니다.
func (e *Inline) Submit(task contract.Task) (err error) {
	if task == nil {
		return ErrNilTask
	}

	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
			}).Error("작업 실행 중 패닉 복구됨 (inline)")
			err = ErrPanicRecovered
		}
	}()

	task(e.ctx)

	return nil
}
