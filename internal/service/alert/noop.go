package alert

import (
	"context"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
)

// Noop 알림 채널이 설정되지 않았을 때 사용하는 Alerter입니다. 메시지는 디버그 로그로만 남습니다.
type Noop struct{}

func (Noop) Alert(_ context.Context, message string) {
	applog.WithComponentAndFields(component, applog.Fields{
		"message": message,
	}).Debug("알림 채널 비활성화: 운영 알림 생략")
}

var _ contract.Alerter = Noop{}
