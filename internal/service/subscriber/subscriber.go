// Package subscriber NATS 주제를 구독하여 알림 해제 신호를 수신합니다.
package subscriber

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/nats-io/nats.go"
)

const component = "subscriber.nats"

const (
	connectTimeout = 5 * time.Second
	reconnectWait  = 2 * time.Second
	drainTimeout   = 5 * time.Second
)

// Subscriber NATS 주제로 전달되는 해제 신호를 DismissalHandler에 전달합니다.
//
// 큐 그룹이 설정되면 같은 그룹의 인스턴스 중 하나만 메시지를 받습니다.
// 메시지는 재전달되지 않으므로 처리기는 수신 즉시 반환해야 합니다.
type Subscriber struct {
	cfg config.NATSConfig

	handler contract.DismissalHandler
	alerter contract.Alerter

	connect func(url string, options ...nats.Option) (*nats.Conn, error)

	mu   sync.RWMutex
	conn *nats.Conn
	sub  *nats.Subscription

	received     atomic.Uint64
	reconnects   atomic.Uint64
	disconnected atomic.Uint64

	running   bool
	runningMu sync.Mutex
}

// New Subscriber를 생성합니다.
//
// Panics:
//   - handler 또는 alerter가 nil인 경우
func New(cfg config.NATSConfig, handler contract.DismissalHandler, alerter contract.Alerter) *Subscriber {
	if handler == nil {
		panic("DismissalHandler는 필수입니다")
	}
	if alerter == nil {
		panic("Alerter는 필수입니다")
	}

	return &Subscriber{
		cfg: cfg,

		handler: handler,
		alerter: alerter,

		connect: nats.Connect,
	}
}

// Start NATS 서버에 연결하고 구독을 시작합니다.
// Context가 취소되면 구독을 Drain하여 이미 수신한 메시지를 처리한 뒤 연결을 닫습니다.
func (s *Subscriber) Start(ctx context.Context, wg *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("NATS 구독 서비스 시작중...")

	if s.running {
		defer wg.Done()
		applog.WithComponent(component).Warn("NATS 구독 서비스가 이미 시작됨!!!")
		return nil
	}

	closedC := make(chan struct{})
	var closeOnce sync.Once

	conn, err := s.connect(s.cfg.URL,
		nats.Name(config.AppName),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DrainTimeout(drainTimeout),
		nats.DisconnectErrHandler(s.onDisconnect),
		nats.ReconnectHandler(s.onReconnect),
		nats.ClosedHandler(func(*nats.Conn) {
			closeOnce.Do(func() { close(closedC) })
		}),
	)
	if err != nil {
		defer wg.Done()
		return newErrConnectFailed(s.cfg.URL, err)
	}

	sub, err := s.subscribe(conn)
	if err != nil {
		conn.Close()
		defer wg.Done()
		return newErrSubscribeFailed(s.cfg.Subject, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.sub = sub
	s.mu.Unlock()

	s.running = true

	go s.waitForShutdown(ctx, wg, closedC)

	applog.WithComponentAndFields(component, applog.Fields{
		"url":         conn.ConnectedUrlRedacted(),
		"subject":     s.cfg.Subject,
		"queue_group": sub.Queue,
	}).Info("NATS 구독 서비스 시작됨")

	return nil
}

func (s *Subscriber) subscribe(conn *nats.Conn) (*nats.Subscription, error) {
	if s.cfg.QueueGroup == "" {
		return conn.Subscribe(s.cfg.Subject, s.handleMsg)
	}

	// 큐 그룹 이름에는 마침표를 쓰지 않습니다.
	group := strings.ReplaceAll(s.cfg.QueueGroup, ".", "_")

	return conn.QueueSubscribe(s.cfg.Subject, group, s.handleMsg)
}

// handleMsg 수신한 메시지를 원시 페이로드 그대로 처리기에 넘깁니다.
func (s *Subscriber) handleMsg(msg *nats.Msg) {
	s.received.Add(1)

	s.handler.HandleRaw(msg.Data, contract.DismissalSourceNATS)
}

// onDisconnect 연결 끊김을 기록합니다. err가 nil이면 Drain/Close에 의한 정상 종료이므로 운영 알림을 보내지 않습니다.
func (s *Subscriber) onDisconnect(_ *nats.Conn, err error) {
	s.disconnected.Add(1)

	if err == nil {
		applog.WithComponent(component).Debug("NATS 서버와의 연결이 종료되었습니다")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"error": err,
	}).Warn("NATS 서버와의 연결이 끊어졌습니다. 재연결을 시도합니다")

	s.alerter.Alert(context.Background(), fmt.Sprintf("NATS 서버와의 연결이 끊어졌습니다 (subject: %s)\r\n\r\n%s", s.cfg.Subject, err))
}

func (s *Subscriber) onReconnect(conn *nats.Conn) {
	s.reconnects.Add(1)

	applog.WithComponentAndFields(component, applog.Fields{
		"url": conn.ConnectedUrlRedacted(),
	}).Info("NATS 서버에 재연결되었습니다")
}

func (s *Subscriber) waitForShutdown(ctx context.Context, wg *sync.WaitGroup, closedC <-chan struct{}) {
	defer wg.Done()

	<-ctx.Done()

	applog.WithComponent(component).Info("NATS 구독 서비스 중지중...")

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if err := conn.Drain(); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("NATS 구독 Drain 중 오류가 발생하여 연결을 즉시 닫습니다")
		conn.Close()
	}

	select {
	case <-closedC:
	case <-time.After(drainTimeout + time.Second):
		applog.WithComponent(component).Warn("NATS 연결 종료 대기 시간이 초과되었습니다")
		conn.Close()
	}

	s.mu.Lock()
	s.conn = nil
	s.sub = nil
	s.mu.Unlock()

	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"received": s.received.Load(),
	}).Info("NATS 구독 서비스 중지됨")
}

// Health NATS 연결 상태를 확인합니다.
func (s *Subscriber) Health(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.conn == nil || !s.conn.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Stats NATS 구독 처리 통계
type Stats struct {
	Received     uint64 `json:"received"`
	Reconnects   uint64 `json:"reconnects"`
	Disconnected uint64 `json:"disconnected"`
}

// Stats 현재까지의 처리 통계를 반환합니다.
func (s *Subscriber) Stats() Stats {
	return Stats{
		Received:     s.received.Load(),
		Reconnects:   s.reconnects.Load(),
		Disconnected: s.disconnected.Load(),
	}
}
