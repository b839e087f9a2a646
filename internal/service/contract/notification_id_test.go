package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationID_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   NotificationID
		want bool
	}{
		{id: SentinelNotificationID, want: false},
		{id: -42, want: false},
		{id: 0, want: true},
		{id: 42, want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.id.IsValid(), "id=%d", tt.id)
	}
}

func TestNotificationID_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", NotificationID(42).String())
	assert.Equal(t, "-1", SentinelNotificationID.String())
}
