package subscriber

import (
	"context"
	"encoding/json"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/dismissal"
	"github.com/nats-io/nats.go"
)

// EncodePayload 해제 신호 페이로드를 생성합니다. Subscriber가 수신하는 형식과 같습니다.
//
//	{"notification_id": 42}
func EncodePayload(id contract.NotificationID) ([]byte, error) {
	return json.Marshal(map[string]int64{dismissal.PayloadField: int64(id)})
}

// PublishDismissal 해제 신호 하나를 NATS 주제로 발행하고 서버 수신을 확인한 뒤 연결을 닫습니다.
// 운영 도구(CLI)에서 다른 인스턴스에 해제 신호를 전달할 때 사용합니다.
func PublishDismissal(ctx context.Context, cfg config.NATSConfig, id contract.NotificationID) error {
	if !id.IsValid() {
		return contract.ErrInvalidNotificationID
	}

	payload, err := EncodePayload(id)
	if err != nil {
		return err
	}

	conn, err := nats.Connect(cfg.URL, nats.Name(config.AppName), nats.Timeout(connectTimeout))
	if err != nil {
		return newErrConnectFailed(cfg.URL, err)
	}
	defer conn.Close()

	if err := conn.Publish(cfg.Subject, payload); err != nil {
		return newErrPublishFailed(cfg.Subject, err)
	}
	if err := conn.FlushWithContext(ctx); err != nil {
		return newErrPublishFailed(cfg.Subject, err)
	}

	return nil
}
