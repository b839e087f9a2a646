package contract

import "strconv"

// NotificationID 알림이 생성될 때 발급된 정수 식별자입니다.
//
// 이 타입은 수신 경로(api, subscriber), 해제 처리기(dismissal), 레지스트리(registry)에서
// 공통으로 참조되므로 순환 참조를 피하기 위해 contract 패키지에 정의되었습니다.
type NotificationID int64

// SentinelNotificationID 해제 신호에 식별자가 없거나 해석할 수 없음을 나타내는 예약 값입니다.
const SentinelNotificationID NotificationID = -1

// IsValid 취소 대상으로 삼을 수 있는 식별자인지 확인합니다.
// 센티널(-1)을 포함한 모든 음수는 유효하지 않습니다.
func (id NotificationID) IsValid() bool {
	return id >= 0
}

func (id NotificationID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
