package maputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	NotificationID int64         `json:"notification_id"`
	Reason         string        `json:"reason"`
	Delay          time.Duration `json:"delay"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         any
		opts          []Option
		want          *sample
		errorContains string
	}{
		{
			name:  "성공: 숫자 ID",
			input: map[string]any{"notification_id": float64(42), "reason": "swiped"},
			want:  &sample{NotificationID: 42, Reason: "swiped"},
		},
		{
			name:  "성공: 문자열 ID (느슨한 변환)",
			input: map[string]any{"notification_id": "42", "delay": "1s"},
			want:  &sample{NotificationID: 42, Delay: time.Second},
		},
		{
			name:          "실패: 엄격 모드에서 문자열 ID",
			input:         map[string]any{"notification_id": "42"},
			opts:          []Option{WithStrictTypes()},
			errorContains: "디코딩하는 데 실패했습니다",
		},
		{
			name:          "실패: 알 수 없는 필드",
			input:         map[string]any{"notification_id": 1, "unknown": true},
			opts:          []Option{WithErrorUnused()},
			errorContains: "unknown",
		},
		{
			name:          "실패: 잘못된 Duration",
			input:         map[string]any{"delay": "soon"},
			errorContains: "디코딩하는 데 실패했습니다",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode[sample](tt.input, tt.opts...)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTo_NilOutput(t *testing.T) {
	t.Parallel()

	var out *sample
	assert.Error(t, DecodeTo(map[string]any{}, out))
}
