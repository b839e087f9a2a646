package subscriber

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract/mocks"
	"github.com/darkkaiser/notification-reconciler/internal/service/dismissal"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestSubscriber() (*Subscriber, *mocks.MockDismissalHandler) {
	handler := &mocks.MockDismissalHandler{}
	s := New(config.NATSConfig{
		Enabled:    true,
		URL:        "nats://127.0.0.1:4222",
		Subject:    "notification.dismissed",
		QueueGroup: "notification.reconciler",
	}, handler, &mocks.MockAlerter{})

	return s, handler
}

func TestNew_NilDependencies(t *testing.T) {
	assert.PanicsWithValue(t, "DismissalHandler는 필수입니다", func() {
		New(config.NATSConfig{}, nil, &mocks.MockAlerter{})
	})
	assert.PanicsWithValue(t, "Alerter는 필수입니다", func() {
		New(config.NATSConfig{}, &mocks.MockDismissalHandler{}, nil)
	})
}

func TestSubscriber_HandleMsg(t *testing.T) {
	s, handler := newTestSubscriber()

	payloads := [][]byte{
		[]byte(`{"notification_id":42}`),
		[]byte(`-1`),
		[]byte(`garbage`),
	}
	for _, p := range payloads {
		handler.On("HandleRaw", p, contract.DismissalSourceNATS).Once()
	}

	for _, p := range payloads {
		s.handleMsg(&nats.Msg{Subject: "notification.dismissed", Data: p})
	}

	handler.AssertExpectations(t)
	assert.Equal(t, uint64(3), s.Stats().Received)
}

func TestSubscriber_HandleMsg_EndToEnd(t *testing.T) {
	// 발행 페이로드가 처리기에서 같은 ID로 해석되는지 확인합니다.
	var got contract.NotificationID = -2
	handler := &captureHandler{fn: func(payload []byte) {
		got = dismissal.ParsePayload(payload)
	}}
	s := New(config.NATSConfig{Subject: "notification.dismissed"}, handler, &mocks.MockAlerter{})

	payload, err := EncodePayload(42)
	require.NoError(t, err)
	s.handleMsg(&nats.Msg{Data: payload})

	assert.Equal(t, contract.NotificationID(42), got)
}

type captureHandler struct {
	fn func(payload []byte)
}

func (h *captureHandler) HandleDismissal(contract.DismissalEvent) {}

func (h *captureHandler) HandleRaw(payload []byte, _ contract.DismissalSource) {
	h.fn(payload)
}

func TestSubscriber_Start_ConnectFailure(t *testing.T) {
	s, _ := newTestSubscriber()
	s.connect = func(string, ...nats.Option) (*nats.Conn, error) {
		return nil, nats.ErrNoServers
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	err := s.Start(context.Background(), wg)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	assert.True(t, errors.Is(err, nats.ErrNoServers))

	// 실패한 Start도 WaitGroup을 해제해야 합니다.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitGroup이 해제되지 않았습니다")
	}

	assert.False(t, s.running)
}

func TestSubscriber_OnDisconnect(t *testing.T) {
	t.Run("정상 종료: 알림 없음", func(t *testing.T) {
		alerter := &mocks.MockAlerter{}
		s := New(config.NATSConfig{Subject: "notification.dismissed"}, &mocks.MockDismissalHandler{}, alerter)

		s.onDisconnect(nil, nil)

		alerter.AssertNotCalled(t, "Alert", mock.Anything, mock.Anything)
		assert.Equal(t, uint64(1), s.Stats().Disconnected)
	})

	t.Run("연결 끊김: 운영 알림 전송", func(t *testing.T) {
		alerter := &mocks.MockAlerter{}
		alerter.On("Alert", mock.Anything, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "notification.dismissed") && strings.Contains(msg, "connection reset")
		})).Once()
		s := New(config.NATSConfig{Subject: "notification.dismissed"}, &mocks.MockDismissalHandler{}, alerter)

		s.onDisconnect(nil, errors.New("connection reset"))

		alerter.AssertExpectations(t)
		assert.Equal(t, uint64(1), s.Stats().Disconnected)
	})
}

func TestSubscriber_Health_NotConnected(t *testing.T) {
	s, _ := newTestSubscriber()

	assert.ErrorIs(t, s.Health(context.Background()), ErrNotConnected)
}

func TestEncodePayload(t *testing.T) {
	payload, err := EncodePayload(42)
	require.NoError(t, err)
	assert.JSONEq(t, `{"notification_id":42}`, string(payload))
}

func TestPublishDismissal_InvalidID(t *testing.T) {
	err := PublishDismissal(context.Background(), config.NATSConfig{URL: "nats://127.0.0.1:1"}, contract.SentinelNotificationID)

	assert.ErrorIs(t, err, contract.ErrInvalidNotificationID)
}
