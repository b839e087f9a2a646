// Package testutil 서버를 실제로 띄우는 테스트에서 사용하는 헬퍼를 제공합니다.
package testutil

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// FreePort 현재 사용 중이지 않은 로컬 TCP 포트 번호를 반환합니다.
//
// 포트를 확인한 직후 리스너를 닫으므로, 서버가 바인딩하기 전에 다른 프로세스가 가져갈 수 있습니다.
func FreePort(t testing.TB) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "빈 포트를 찾을 수 없습니다")
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

// WaitForServer port에서 연결을 받을 때까지 기다립니다. timeout 안에 연결되지 않으면 테스트를 실패시킵니다.
func WaitForServer(t testing.TB, port int, timeout time.Duration) {
	t.Helper()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, timeout, 10*time.Millisecond, "서버가 %s에서 시작되지 않았습니다", addr)
}
