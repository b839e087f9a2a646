package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCORSOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		origin        string
		errorContains string
	}{
		{name: "성공: 와일드카드", origin: "*"},
		{name: "성공: https 도메인", origin: "https://example.com"},
		{name: "성공: 포트 포함", origin: "http://localhost:8080"},
		{name: "성공: IPv6", origin: "http://[::1]:3000"},
		{name: "실패: 빈 문자열", origin: " ", errorContains: "비어있을 수 없습니다"},
		{name: "실패: 후행 슬래시", origin: "https://example.com/", errorContains: "'/'"},
		{name: "실패: 경로 포함", origin: "https://example.com/api", errorContains: "경로"},
		{name: "실패: ftp 스키마", origin: "ftp://example.com", errorContains: "스키마"},
		{name: "실패: 포트 범위", origin: "http://example.com:70000", errorContains: "포트"},
		{name: "실패: 숫자 TLD", origin: "http://example.123", errorContains: "TLD"},
		{name: "실패: 잘못된 문자", origin: "http://exa_mple.com", errorContains: "영문, 숫자"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateCORSOrigin(tt.origin)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestValidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(file, []byte("cert"), 0600))

	assert.NoError(t, ValidateFile(file))

	err := ValidateFile(filepath.Join(dir, "missing.pem"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "존재하지 않습니다")

	err = ValidateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "일반 파일이 아닙니다")

	assert.Error(t, ValidateFile(""))
}
