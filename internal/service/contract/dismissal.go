package contract

import "time"

// DismissalSource 해제 신호가 전달된 경로입니다. 진단 로그에만 사용됩니다.
type DismissalSource string

const (
	DismissalSourceHTTP DismissalSource = "http"
	DismissalSourceNATS DismissalSource = "nats"
	DismissalSourceCLI  DismissalSource = "cli"
)

// DismissalEvent "알림 N이 사용자 또는 플랫폼에 의해 지워졌다"는 외부 신호입니다.
//
// 전달 계층이 생성하여 해제 처리기에 한 번 전달되며 저장되지 않습니다.
type DismissalEvent struct {
	NotificationID NotificationID
	Source         DismissalSource
	ReceivedAt     time.Time
}

// DismissalHandler 해제 신호를 받아 레지스트리 정리 작업을 비동기로 예약합니다.
//
// 두 메서드 모두 반환값이 없으며, 호출한 전달 컨텍스트(HTTP 핸들러, NATS 콜백)를
// 블로킹하거나 panic을 전파하지 않습니다.
type DismissalHandler interface {
	// HandleDismissal 이미 해석된 해제 신호를 처리합니다.
	HandleDismissal(event DismissalEvent)

	// HandleRaw 원시 페이로드(JSON 또는 10진수 문자열)를 해석한 뒤 처리합니다.
	// 해석할 수 없는 페이로드는 센티널 식별자로 취급합니다.
	HandleRaw(payload []byte, source DismissalSource)
}
