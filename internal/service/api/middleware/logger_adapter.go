package middleware

import (
	"io"

	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/gommon/log"
)

// Logger echo.Logger를 applog.Logger 위에 구현합니다.
// Echo가 직접 남기는 로그(리스너 오류, TLS 핸드셰이크 오류 등)도 애플리케이션 로그 파일로 모입니다.
type Logger struct {
	*applog.Logger
}

var toGommonLevel = map[applog.Level]log.Lvl{
	applog.TraceLevel: log.DEBUG,
	applog.DebugLevel: log.DEBUG,
	applog.InfoLevel:  log.INFO,
	applog.WarnLevel:  log.WARN,
	applog.ErrorLevel: log.ERROR,
}

var fromGommonLevel = map[log.Lvl]applog.Level{
	log.DEBUG: applog.DebugLevel,
	log.INFO:  applog.InfoLevel,
	log.WARN:  applog.WarnLevel,
	log.ERROR: applog.ErrorLevel,
}

func (l Logger) Output() io.Writer { return l.Logger.Out }
func (l Logger) SetOutput(w io.Writer) { l.Logger.SetOutput(w) }
func (l Logger) Prefix() string { return "" }
func (l Logger) SetPrefix(string) {}
func (l Logger) SetHeader(string) {}
func (l Logger) Print(i ...any) { l.Logger.Print(i...) }
func (l Logger) Printf(f string, a ...any) { l.Logger.Printf(f, a...) }
func (l Logger) Debug(i ...any) { l.Logger.Debug(i...) }
func (l Logger) Debugf(f string, a ...any) { l.Logger.Debugf(f, a...) }
func (l Logger) Info(i ...any) { l.Logger.Info(i...) }
func (l Logger) Infof(f string, a ...any) { l.Logger.Infof(f, a...) }
func (l Logger) Warn(i ...any) { l.Logger.Warn(i...) }
func (l Logger) Warnf(f string, a ...any) { l.Logger.Warnf(f, a...) }
func (l Logger) Error(i ...any) { l.Logger.Error(i...) }
func (l Logger) Errorf(f string, a ...any) { l.Logger.Errorf(f, a...) }
func (l Logger) Fatal(i ...any) { l.Logger.Fatal(i...) }
func (l Logger) Fatalf(f string, a ...any) { l.Logger.Fatalf(f, a...) }
func (l Logger) Panic(i ...any) { l.Logger.Panic(i...) }
func (l Logger) Panicf(f string, a ...any) { l.Logger.Panicf(f, a...) }

// Level Fatal/Panic 레벨은 gommon에 대응하는 값이 없어 OFF로 보고합니다.
func (l Logger) Level() log.Lvl {
	if lvl, ok := toGommonLevel[l.Logger.Level]; ok {
		return lvl
	}
	return log.OFF
}

func (l Logger) SetLevel(lvl log.Lvl) {
	if level, ok := fromGommonLevel[lvl]; ok {
		l.Logger.SetLevel(level)
	}
}

// JSON 형식의 로그는 필드로 풀어서 기록합니다.
func (l Logger) entry(j log.JSON) *applog.Entry { return l.Logger.WithFields(applog.Fields(j)) }

func (l Logger) Printj(j log.JSON) { l.entry(j).Print() }
func (l Logger) Debugj(j log.JSON) { l.entry(j).Debug() }
func (l Logger) Infoj(j log.JSON) { l.entry(j).Info() }
func (l Logger) Warnj(j log.JSON) { l.entry(j).Warn() }
func (l Logger) Errorj(j log.JSON) { l.entry(j).Error() }
func (l Logger) Fatalj(j log.JSON) { l.entry(j).Fatal() }
func (l Logger) Panicj(j log.JSON) { l.entry(j).Panic() }
