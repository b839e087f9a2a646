package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 20
)

var (
	setupOnce      sync.Once
	globalCloser   io.Closer
	globalSetupErr error
)

// Setup 전역 로깅 시스템을 초기화합니다.
//
// 프로세스 생명주기 동안 한 번만 실행되며, 재호출 시 최초 호출의 결과를 그대로 반환합니다.
// 반환된 Closer는 main 함수 종료 시점에 반드시 닫아야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setup(opts)
	})

	return globalCloser, globalSetupErr
}

func setup(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}

	r := &router{formatter: newTextFormatter(opts.CallerPathPrefix)}
	c := &closer{router: r}

	mainFile := newRotatingFile(dir, opts.Name, opts)
	r.main = mainFile
	c.files = append(c.files, mainFile)

	if opts.EnableCriticalLog {
		f := newRotatingFile(dir, opts.Name+".critical", opts)
		r.critical = f
		c.files = append(c.files, f)
	}
	if opts.EnableVerboseLog {
		f := newRotatingFile(dir, opts.Name+".verbose", opts)
		r.verbose = f
		c.files = append(c.files, f)
	}
	if opts.EnableConsoleLog {
		r.console = os.Stdout
	}

	std := logrus.StandardLogger()
	std.SetLevel(level)
	std.SetReportCaller(opts.ReportCaller)
	std.SetFormatter(discardFormatter{})
	std.SetOutput(io.Discard)
	std.AddHook(r)

	// Fatal 로그로 프로세스가 종료되기 직전에 버퍼를 비웁니다.
	logrus.RegisterExitHandler(func() {
		_ = c.Close()
	})

	return c, nil
}

// newRotatingFile lumberjack 기반의 로테이션 파일 Writer를 생성합니다.
// 파일은 첫 번째 쓰기 시점에 열립니다.
func newRotatingFile(dir, baseName string, opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, baseName+".log"),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     opts.MaxAgeDays,
		LocalTime:  true,
	}
}

func newTextFormatter(prefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if prefix != "" {
				if cut, found := strings.CutPrefix(function, prefix); found {
					function = "..." + cut
				}
			}
			return
		},
	}
}
