// Package response API 응답 본문 모델을 정의합니다.
package response

// SuccessResponse API 성공 응답
type SuccessResponse struct {
	// ResultCode 처리 결과 코드 (0: 성공)
	ResultCode int `json:"result_code"`

	// Message 처리 결과 메시지
	Message string `json:"message,omitempty"`
}

// ErrorResponse API 오류 응답
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드 (예: 400, 401, 500)
	ResultCode int `json:"result_code"`

	// Message 에러 메시지
	Message string `json:"message"`
}

// NotificationResponse 알림 레코드 조회 응답
type NotificationResponse struct {
	ResultCode  int    `json:"result_code"`
	ID          int64  `json:"id"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}
