package log

import (
	"fmt"
	"os"
)

// Options 로깅 시스템 초기화 옵션입니다.
type Options struct {
	Name  string // 로그 파일명에 사용될 애플리케이션 식별자
	Dir   string // 로그 파일 저장 디렉토리 (빈 값: "logs")
	Level Level  // 로그 레벨 (0: InfoLevel)

	MaxAgeDays int // 로테이션 된 파일 보관 기간 (0: 삭제 안 함)
	MaxSizeMB  int // 파일 하나의 최대 크기 (0: 100MB)
	MaxBackups int // 보관할 백업 파일 수 (0: 20개)

	EnableCriticalLog bool // ERROR 이상을 <name>.critical.log 파일에 추가로 기록
	EnableVerboseLog  bool // DEBUG 이하를 메인 로그 대신 <name>.verbose.log 파일에 기록
	EnableConsoleLog  bool // 모든 레벨을 표준 출력에도 기록

	ReportCaller bool

	// 호출자 함수 경로에서 잘라낼 접두사
	// 예: "github.com/darkkaiser" -> ".../notification-reconciler/internal/service/dismissal.(*Listener).HandleDismissal"
	CallerPathPrefix string
}

// Validate 옵션 값의 유효성을 검사합니다.
func (opts *Options) Validate() error {
	if opts.Name == "" {
		return fmt.Errorf("애플리케이션 식별자(Name)가 설정되지 않았습니다")
	}

	if opts.Dir != "" {
		if info, err := os.Stat(opts.Dir); err == nil && !info.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로(%s)가 이미 파일로 존재합니다", opts.Dir)
		}
	}

	for name, v := range map[string]int{"MaxAgeDays": opts.MaxAgeDays, "MaxSizeMB": opts.MaxSizeMB, "MaxBackups": opts.MaxBackups} {
		if v < 0 {
			return fmt.Errorf("%s는 0 이상이어야 합니다: %d", name, v)
		}
	}

	return nil
}
