package contract

import "context"

// Alerter 운영자에게 알림 메시지를 전달합니다.
// 전송은 비동기로 수행되며 실패는 로그로만 남습니다.
type Alerter interface {
	Alert(ctx context.Context, message string)
}
