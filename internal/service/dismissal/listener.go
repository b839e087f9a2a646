// Package dismissal 알림 해제 신호를 받아 레지스트리 정리 작업을 예약하는 처리기를 제공합니다.
//
// 처리기는 전달 컨텍스트(HTTP 핸들러, NATS 콜백)에서 직접 호출되므로 블로킹하거나
// panic을 전파해서는 안 됩니다. 실제 취소는 주입된 Executor에서 비동기로 수행됩니다.
package dismissal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
)

const component = "dismissal.listener"

// Listener contract.DismissalHandler 구현체입니다.
type Listener struct {
	executor  contract.Executor
	canceller contract.Canceller
	alerter   contract.Alerter

	// alertInterval 작업 거부 알림의 최소 전송 간격입니다. 0 이하이면 알리지 않습니다.
	alertInterval time.Duration
	lastAlertAt   atomic.Int64

	now func() time.Time

	received   atomic.Int64
	dispatched atomic.Int64
	filtered   atomic.Int64
	rejected   atomic.Int64
	recovered  atomic.Int64
}

// New 새로운 Listener를 생성합니다. alerter가 nil이거나 alertInterval이 0 이하이면 거부 알림을 보내지 않습니다.
func New(executor contract.Executor, canceller contract.Canceller, alerter contract.Alerter, alertInterval time.Duration) *Listener {
	if executor == nil {
		panic("dismissal: Executor는 필수입니다")
	}
	if canceller == nil {
		panic("dismissal: Canceller는 필수입니다")
	}

	return &Listener{
		executor:  executor,
		canceller: canceller,
		alerter:   alerter,

		alertInterval: alertInterval,

		now: time.Now,
	}
}

// HandleDismissal 해제 신호를 받아 취소 작업을 실행기에 제출하고 즉시 반환합니다.
//
// 센티널 또는 음수 식별자는 제출하지 않습니다. 실행기가 작업을 거부하면 로그를 남기고
// 신호를 버립니다. 어떤 경우에도 panic을 호출자에게 전파하지 않습니다.
func (l *Listener) HandleDismissal(event contract.DismissalEvent) {
	defer l.recoverPanic(event.Source)

	l.received.Add(1)

	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = l.now()
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"notification_id": int64(event.NotificationID),
		"source":          event.Source,
		"received_at":     event.ReceivedAt,
	}).Debug("알림 해제 신호 수신")

	id := event.NotificationID
	if !id.IsValid() {
		l.filtered.Add(1)

		applog.WithComponentAndFields(component, applog.Fields{
			"notification_id": int64(id),
			"source":          event.Source,
		}).Debug("유효한 알림 ID가 없는 해제 신호 무시")

		return
	}

	err := l.executor.Submit(func(ctx context.Context) {
		l.canceller.Cancel(ctx, id)
	})
	if err != nil {
		l.rejected.Add(1)

		applog.WithComponentAndFields(component, applog.Fields{
			"notification_id": int64(id),
			"source":          event.Source,
			"error":           err,
		}).Warn("알림 취소 작업 제출 실패: 해제 신호를 버립니다")

		l.alertRejection(id, err)

		return
	}

	l.dispatched.Add(1)
}

// HandleRaw 원시 페이로드를 해석한 뒤 HandleDismissal로 처리합니다.
func (l *Listener) HandleRaw(payload []byte, source contract.DismissalSource) {
	defer l.recoverPanic(source)

	l.HandleDismissal(contract.DismissalEvent{
		NotificationID: ParsePayload(payload),
		Source:         source,
		ReceivedAt:     l.now(),
	})
}

func (l *Listener) recoverPanic(source contract.DismissalSource) {
	if r := recover(); r != nil {
		l.recovered.Add(1)

		applog.WithComponentAndFields(component, applog.Fields{
			"source": source,
			"panic":  r,
		}).Error("해제 신호 처리 중 패닉 복구됨")
	}
}

// alertRejection 작업 거부를 운영자에게 알립니다. alertInterval 안에서는 한 번만 알립니다.
func (l *Listener) alertRejection(id contract.NotificationID, cause error) {
	if l.alerter == nil || l.alertInterval <= 0 {
		return
	}

	now := l.now().UnixNano()
	last := l.lastAlertAt.Load()
	if last != 0 && now-last < int64(l.alertInterval) {
		return
	}
	if !l.lastAlertAt.CompareAndSwap(last, now) {
		// 다른 고루틴이 먼저 알림을 보냈습니다.
		return
	}

	l.alerter.Alert(context.Background(), fmt.Sprintf(
		"알림 취소 작업이 거부되었습니다.\n\n- 알림 ID: %d\n- 원인: %v\n- 누적 거부 횟수: %d",
		id, cause, l.rejected.Load(),
	))
}

// Stats 해제 신호 처리 통계입니다.
type Stats struct {
	Received   int64 `json:"received"`
	Dispatched int64 `json:"dispatched"`
	Filtered   int64 `json:"filtered"`
	Rejected   int64 `json:"rejected"`
	Recovered  int64 `json:"recovered"`
}

// Stats 현재까지의 처리 통계를 반환합니다.
func (l *Listener) Stats() Stats {
	return Stats{
		Received:   l.received.Load(),
		Dispatched: l.dispatched.Load(),
		Filtered:   l.filtered.Load(),
		Rejected:   l.rejected.Load(),
		Recovered:  l.recovered.Load(),
	}
}

var _ contract.DismissalHandler = (*Listener)(nil)
