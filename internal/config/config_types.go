package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// 레지스트리 저장소 드라이버
const (
	RegistryDriverMemory = "memory"
	RegistryDriverSQLite = "sqlite"
)

// AppConfig 애플리케이션의 모든 설정을 포함하는 최상위 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	Registry  RegistryConfig  `json:"registry"`
	Executor  ExecutorConfig  `json:"executor"`
	Dismissal DismissalConfig `json:"dismissal"`
	API       APIConfig       `json:"api"`
	NATS      NATSConfig      `json:"nats"`
	Alert     AlertConfig     `json:"alert"`
}

// defaultAppConfig 설정 파일에 값이 없을 때 사용되는 기본값입니다.
func defaultAppConfig() AppConfig {
	return AppConfig{
		Registry: RegistryConfig{
			Driver: RegistryDriverMemory,
			Purge: PurgeConfig{
				Enabled:   true,
				TimeSpec:  "0 0 4 * * *",
				Retention: 7 * 24 * time.Hour,
			},
		},
		Executor: ExecutorConfig{
			Workers:         4,
			QueueSize:       1024,
			ShutdownTimeout: 5 * time.Second,
		},
		Dismissal: DismissalConfig{
			AlertInterval: 10 * time.Minute,
		},
		API: APIConfig{
			Enabled:    true,
			ListenPort: 2443,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 20,
				Burst:             40,
			},
			CORS: CORSConfig{AllowOrigins: []string{"*"}},
		},
		NATS: NATSConfig{
			Subject:    "notification.dismissed",
			QueueGroup: AppName,
		},
	}
}

// validate 로드된 설정의 정합성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "설정"); err != nil {
		return err
	}

	if err := c.API.validate(); err != nil {
		return err
	}

	if !c.API.Enabled && !c.NATS.Enabled {
		return apperrors.New(apperrors.InvalidInput, "알림 해제 신호를 수신할 경로가 없습니다. api 또는 nats 중 하나 이상을 활성화해야 합니다")
	}

	return nil
}

// VerifyRecommendations 강제하지는 않지만 운영상 권장되지 않는 설정에 대한 경고 목록을 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.API.Enabled && c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}
	if c.Executor.QueueSize < c.Executor.Workers {
		warnings = append(warnings, fmt.Sprintf("작업 큐 크기(%d)가 워커 수(%d)보다 작습니다. 순간적인 해제 신호 폭주 시 유실될 수 있습니다", c.Executor.QueueSize, c.Executor.Workers))
	}
	if c.Registry.Driver == RegistryDriverMemory {
		warnings = append(warnings, "메모리 레지스트리를 사용 중입니다. 프로세스 재시작 시 알림 상태가 초기화됩니다")
	}

	return warnings
}

// RegistryConfig 알림 레지스트리 저장소 설정
type RegistryConfig struct {
	Driver string      `json:"driver" validate:"oneof=memory sqlite"`
	DSN    string      `json:"dsn" validate:"required_if=Driver sqlite"`
	Purge  PurgeConfig `json:"purge"`
}

// PurgeConfig 취소된 레코드를 주기적으로 정리하는 스케줄 설정
type PurgeConfig struct {
	Enabled   bool          `json:"enabled"`
	TimeSpec  string        `json:"time_spec" validate:"required_if=Enabled true,omitempty,cron_spec"`
	Retention time.Duration `json:"retention" validate:"gt=0"`
}

// ExecutorConfig 취소 작업을 처리하는 워커 풀 설정
type ExecutorConfig struct {
	Workers         int           `json:"workers" validate:"min=1,max=256"`
	QueueSize       int           `json:"queue_size" validate:"min=1"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
}

// DismissalConfig 해제 신호 처리기 설정
type DismissalConfig struct {
	// 작업 큐 포화로 신호가 유실될 때 운영 알림을 보내는 최소 간격 (0: 알림 안 함)
	AlertInterval time.Duration `json:"alert_interval" validate:"gte=0"`
}

// APIConfig 해제 신호를 수신하는 REST API 서버 설정
type APIConfig struct {
	Enabled      bool                `json:"enabled"`
	ListenPort   int                 `json:"listen_port" validate:"min=1,max=65535"`
	TLSServer    bool                `json:"tls_server"`
	TLSCertFile  string              `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,readable_file"`
	TLSKeyFile   string              `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,readable_file"`
	RateLimit    RateLimitConfig     `json:"rate_limit"`
	CORS         CORSConfig          `json:"cors"`
	Applications []ApplicationConfig `json:"applications" validate:"unique=ID,dive"`
}

func (c *APIConfig) validate() error {
	if !c.Enabled {
		return nil
	}

	if len(c.CORS.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}
	for _, origin := range c.CORS.AllowOrigins {
		if origin == "*" && len(c.CORS.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	if len(c.Applications) == 0 {
		return apperrors.New(apperrors.InvalidInput, "API를 사용할 애플리케이션(applications)이 하나 이상 등록되어야 합니다")
	}
	for _, app := range c.Applications {
		if strings.TrimSpace(app.AppKey) == "" {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("Application['%s']의 API 키(app_key)가 설정되지 않았습니다", app.ID))
		}
	}

	return nil
}

// RateLimitConfig 클라이언트 IP별 요청 속도 제한 설정
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gt=0"`
	Burst             int     `json:"burst" validate:"min=1"`
}

// CORSConfig 교차 출처 리소스 공유(CORS) 정책
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

// ApplicationConfig API를 호출할 수 있는 클라이언트 애플리케이션의 인증 정보
type ApplicationConfig struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AppKey      string `json:"app_key"`
}

// NATSConfig 해제 신호를 수신하는 NATS 구독 설정
type NATSConfig struct {
	Enabled    bool   `json:"enabled"`
	URL        string `json:"url" validate:"required_if=Enabled true,omitempty,url"`
	Subject    string `json:"subject" validate:"required_if=Enabled true"`
	QueueGroup string `json:"queue_group"`
}

// AlertConfig 운영자 알림 설정
type AlertConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token" validate:"required_if=Enabled true,omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_if=Enabled true"`
}
