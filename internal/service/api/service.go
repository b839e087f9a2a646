// Package api 해제 신호를 REST API로 수신하는 HTTP 서비스를 제공합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/pkg/version"
	apiauth "github.com/darkkaiser/notification-reconciler/internal/service/api/auth"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/notification-reconciler/internal/service/api/v1"
	v1handler "github.com/darkkaiser/notification-reconciler/internal/service/api/v1/handler"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// Service 해제 신호 API 서버의 생명주기를 관리합니다.
//
// Start로 시작하면 별도 고루틴에서 HTTP(S) 서버를 실행하고, Context가 취소되면
// ShutdownTimeout 안에서 Graceful Shutdown을 수행합니다.
type Service struct {
	apiConfig config.APIConfig
	debug     bool

	dismissalHandler contract.DismissalHandler
	registry         contract.NotificationRegistry
	alerter          contract.Alerter

	buildInfo version.Info

	healthChecks map[string]system.HealthCheckFunc
	stats        map[string]system.StatsFunc

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
//
// Panics:
//   - dismissalHandler, registry, alerter 중 하나라도 nil인 경우
func NewService(appConfig *config.AppConfig, dismissalHandler contract.DismissalHandler, registry contract.NotificationRegistry, alerter contract.Alerter, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if dismissalHandler == nil {
		panic("DismissalHandler는 필수입니다")
	}
	if registry == nil {
		panic("NotificationRegistry는 필수입니다")
	}
	if alerter == nil {
		panic("Alerter는 필수입니다")
	}

	return &Service{
		apiConfig: appConfig.API,
		debug:     appConfig.Debug,

		dismissalHandler: dismissalHandler,
		registry:         registry,
		alerter:          alerter,

		buildInfo: buildInfo,

		healthChecks: make(map[string]system.HealthCheckFunc),
		stats:        make(map[string]system.StatsFunc),
	}
}

// RegisterHealthCheck /health 응답에 포함할 의존성을 등록합니다. Start 이전에 호출해야 합니다.
func (s *Service) RegisterHealthCheck(name string, check system.HealthCheckFunc) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	s.healthChecks[name] = check
}

// RegisterStats /health 응답에 포함할 처리 통계를 등록합니다. Start 이전에 호출해야 합니다.
func (s *Service) RegisterStats(name string, fn system.StatsFunc) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	s.stats[name] = fn
}

// Start API 서비스를 시작합니다. 실제 서버는 고루틴에서 실행되며 이 함수는 즉시 반환됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	e := s.setupServer()

	go s.runServiceLoop(serviceStopCtx, serviceStopWG, e)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup, e *echo.Echo) {
	defer serviceStopWG.Done()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Authenticator, 핸들러, 미들웨어, 라우트를 구성한 Echo 인스턴스를 생성합니다.
func (s *Service) setupServer() *echo.Echo {
	authenticator := apiauth.NewAuthenticator(s.apiConfig)

	systemHandler := system.NewHandler(s.buildInfo, s.healthChecks, s.stats)
	v1Handler := v1handler.NewHandler(s.dismissalHandler, s.registry)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:              s.debug,
		EnableHSTS:         s.apiConfig.TLSServer,
		AllowOrigins:       s.apiConfig.CORS.AllowOrigins,
		RateLimitPerSecond: s.apiConfig.RateLimit.RequestsPerSecond,
		RateLimitBurst:     s.apiConfig.RateLimit.Burst,
	})

	RegisterRoutes(e, systemHandler)
	v1.RegisterRoutes(e, v1Handler, authenticator)

	return e
}

func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.apiConfig.ListenPort
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": port,
		"tls":  s.apiConfig.TLSServer,
	}).Debug(constants.LogMsgHTTPServerStarting)

	var err error
	if s.apiConfig.TLSServer {
		err = e.StartTLS(fmt.Sprintf(":%d", port), s.apiConfig.TLSCertFile, s.apiConfig.TLSKeyFile)
	} else {
		err = e.Start(fmt.Sprintf(":%d", port))
	}

	s.handleServerError(err)
}

func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgHTTPServerStopped)
		return
	}

	message := constants.LogMsgHTTPServerFatalError
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  s.apiConfig.ListenPort,
		"error": err,
	}).Error(message)

	s.alerter.Alert(context.Background(), fmt.Sprintf("%s\r\n\r\n%s", message, err))
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
// HTTP 서버가 먼저 종료된 경우(포트 바인딩 실패 등)에는 상태만 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)
	case <-httpServerDone:
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
