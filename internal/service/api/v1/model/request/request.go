// Package request v1 API 요청 본문 및 경로 파라미터 모델을 정의합니다.
package request

import "encoding/json"

// NotificationPathRequest 알림 ID를 경로 파라미터로 받는 요청입니다.
//
// echo.Context.Bind로 바인딩되며, 숫자가 아닌 값은 바인딩 단계에서 거부됩니다.
type NotificationPathRequest struct {
	NotificationID int64 `param:"id" validate:"gte=0" korean:"알림 ID"`
}

// DismissalRequest 본문으로 전달되는 알림 해제 신호입니다.
//
// notification_id는 숫자 또는 숫자 문자열("42")을 모두 허용합니다.
// 정수로 해석할 수 없는 값은 센티널로 취급되어 처리기에서 걸러집니다.
type DismissalRequest struct {
	// 인증에 사용할 애플리케이션 식별자 (X-Application-Id 헤더로 대체 가능)
	ApplicationID string `json:"application_id"`
	// 해제된 알림의 식별자
	NotificationID json.Number `json:"notification_id"`
}
