package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// router 레벨에 따라 로그 이벤트를 여러 출력으로 분배하는 Hook입니다.
//
// 분배 규칙:
//   - console: 모든 레벨
//   - critical: ERROR 이상
//   - verbose: DEBUG 이하 (verbose가 설정된 경우 main에는 기록하지 않음)
//   - main: 그 외 전부
//
// 쓰기 실패는 표준 에러로만 알리고 호출자에게는 전파하지 않습니다.
// 로깅 실패가 알림 해제 처리 경로를 중단시켜서는 안 되기 때문입니다.
type router struct {
	main     io.Writer
	critical io.Writer
	verbose  io.Writer
	console  io.Writer

	formatter Formatter

	mu     sync.RWMutex
	closed bool
}

func (r *router) Levels() []Level {
	return AllLevels
}

func (r *router) Fire(entry *Entry) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil
	}

	msg, err := r.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 로그 포맷팅 실패: %v\n", err)
		return nil
	}

	write(r.console, msg, "console")

	if entry.Level <= ErrorLevel {
		write(r.critical, msg, "critical")
	}

	if entry.Level >= DebugLevel && r.verbose != nil {
		write(r.verbose, msg, "verbose")
		return nil
	}

	write(r.main, msg, "main")

	return nil
}

// close 이후의 모든 Fire 호출을 무시하도록 전환합니다.
// 진행 중인 Fire가 끝날 때까지 대기합니다.
func (r *router) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

func write(w io.Writer, msg []byte, name string) {
	if w == nil {
		return
	}
	if _, err := w.Write(msg); err != nil {
		fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] %s 로그 쓰기 실패: %v\n", name, err)
	}
}
