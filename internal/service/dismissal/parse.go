package dismissal

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/tidwall/gjson"
)

// PayloadField JSON 페이로드에서 알림 식별자를 담는 필드 이름입니다.
const PayloadField = "notification_id"

// ParseID 10진수 문자열을 알림 식별자로 해석합니다.
// 비어 있거나 해석할 수 없는 값은 센티널 식별자가 됩니다.
func ParseID(s string) contract.NotificationID {
	s = strings.TrimSpace(s)
	if s == "" {
		return contract.SentinelNotificationID
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return contract.SentinelNotificationID
	}
	return contract.NotificationID(v)
}

// ParsePayload 해제 신호의 원시 페이로드를 알림 식별자로 해석합니다.
//
// 지원하는 형식:
//   - JSON 객체: {"notification_id": 42} 또는 {"notification_id": "42"}
//   - 10진수 문자열: 42
//
// 필드가 없거나 정수가 아니면 센티널 식별자가 됩니다.
func ParsePayload(payload []byte) contract.NotificationID {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return contract.SentinelNotificationID
	}

	if trimmed[0] != '{' {
		return ParseID(string(trimmed))
	}

	if !gjson.ValidBytes(trimmed) {
		return contract.SentinelNotificationID
	}

	field := gjson.GetBytes(trimmed, PayloadField)
	switch field.Type {
	case gjson.Number:
		// 1.5나 1e3 같은 값은 정수 식별자로 받지 않습니다.
		return ParseID(field.Raw)
	case gjson.String:
		return ParseID(field.Str)
	default:
		return contract.SentinelNotificationID
	}
}
