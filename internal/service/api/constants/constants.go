// Package constants API 서비스 전반에서 공유하는 상수를 정의합니다.
package constants

import "time"

// 로깅 시 로그의 발생 위치(컴포넌트)를 식별하기 위한 상수입니다.
const (
	ComponentService      = "api.service"
	ComponentHandler      = "api.handler"
	ComponentMiddleware   = "api.middleware"
	ComponentErrorHandler = "api.error_handler"
)

// 요청 파라미터 및 헤더
const (
	QueryParamAppKey        = "app_key"
	QueryParamApplicationID = "application_id"

	HeaderAppKey        = "X-App-Key"
	HeaderApplicationID = "X-Application-Id"

	// PathParamNotificationID 알림 식별자를 담는 경로 파라미터 이름입니다.
	PathParamNotificationID = "id"
)

// SensitiveQueryParams 로그에 남기기 전에 마스킹해야 하는 쿼리 파라미터 목록입니다.
var SensitiveQueryParams = []string{
	QueryParamAppKey,
	"api_key",
	"password",
	"token",
	"secret",
}

// HTTP 서버 기본값
const (
	DefaultRequestTimeout    = 30 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultMaxBodySize 해제 신호는 작은 JSON이므로 본문 크기를 작게 제한합니다.
	DefaultMaxBodySize = "64K"

	// ShutdownTimeout Graceful Shutdown 시 최대 대기 시간
	ShutdownTimeout = 5 * time.Second
)

// 헬스체크
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	DependencyRegistry = "registry"
	DependencyExecutor = "executor"
	DependencyNATS     = "nats"

	MsgDepStatusHealthy  = "정상 작동 중"
	MsgDepStatusDisabled = "비활성화됨"
)

// 서비스 로그 메시지
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다."

	LogMsgHTTP4xxClientError = "HTTP 4xx: 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 5xx: 서버 내부 오류"
)

// 에러 응답 메시지
const (
	ErrMsgBadRequest            = "잘못된 요청입니다"
	ErrMsgNotFound              = "요청한 리소스를 찾을 수 없습니다"
	ErrMsgInternalServer        = "내부 서버 오류가 발생했습니다"
	ErrMsgTooManyRequests       = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"
	ErrMsgServiceUnavailable    = "서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요"
	ErrMsgUnsupportedMediaType  = "지원하지 않는 Content-Type 형식입니다"
	ErrMsgRequestEntityTooLarge = "요청 본문이 너무 큽니다"
)

// ContextKeyApplication 인증된 Application 객체를 echo.Context에 저장할 때 사용하는 키입니다.
const ContextKeyApplication = "darkkaiser/notification-reconciler/api/auth/AuthenticatedApplication"
