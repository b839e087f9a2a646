// Package system 헬스체크, 버전 정보 등 인증이 필요 없는 시스템 엔드포인트를 제공합니다.
package system

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/pkg/version"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/system"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
)

// healthCheckTimeout 의존성 하나의 헬스체크에 허용하는 최대 시간
const healthCheckTimeout = 2 * time.Second

// HealthCheckFunc 의존성의 상태를 확인합니다. nil 에러는 정상을 의미합니다.
type HealthCheckFunc func(ctx context.Context) error

// StatsFunc 구성 요소의 처리 통계를 반환합니다.
type StatsFunc func() any

// Handler 시스템 엔드포인트 핸들러 (헬스체크, 버전 정보)
type Handler struct {
	buildInfo version.Info

	healthChecks map[string]HealthCheckFunc
	stats        map[string]StatsFunc

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
//
// healthChecks의 값이 nil인 의존성은 비활성화된 것으로 보고합니다.
func NewHandler(buildInfo version.Info, healthChecks map[string]HealthCheckFunc, stats map[string]StatsFunc) *Handler {
	return &Handler{
		buildInfo: buildInfo,

		healthChecks: healthChecks,
		stats:        stats,

		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler 서버와 의존성의 상태를 반환합니다.
//
//	GET /health
//
// 하나라도 unhealthy인 의존성이 있으면 503으로 응답합니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/health",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug("헬스체크 요청")

	deps := make(map[string]system.DependencyStatus, len(h.healthChecks))
	serverStatus := constants.HealthStatusHealthy

	names := make([]string, 0, len(h.healthChecks))
	for name := range h.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		status := h.checkDependency(c.Request().Context(), h.healthChecks[name])
		if status.Status != constants.HealthStatusHealthy {
			serverStatus = constants.HealthStatusUnhealthy
		}
		deps[name] = status
	}

	var stats map[string]any
	if len(h.stats) > 0 {
		stats = make(map[string]any, len(h.stats))
		for name, fn := range h.stats {
			if fn != nil {
				stats[name] = fn()
			}
		}
	}

	code := http.StatusOK
	if serverStatus != constants.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, system.HealthResponse{
		Status:       serverStatus,
		Uptime:       int64(time.Since(h.serverStartTime).Seconds()),
		Dependencies: deps,
		Stats:        stats,
	})
}

func (h *Handler) checkDependency(ctx context.Context, check HealthCheckFunc) system.DependencyStatus {
	if check == nil {
		return system.DependencyStatus{
			Status:  constants.HealthStatusHealthy,
			Message: constants.MsgDepStatusDisabled,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return system.DependencyStatus{
			Status:    constants.HealthStatusUnhealthy,
			LatencyMs: latency,
			Message:   err.Error(),
		}
	}

	return system.DependencyStatus{
		Status:    constants.HealthStatusHealthy,
		LatencyMs: latency,
		Message:   constants.MsgDepStatusHealthy,
	}
}

// VersionHandler 서버의 빌드 정보를 반환합니다.
//
//	GET /version
func (h *Handler) VersionHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/version",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug("버전 정보 요청")

	return c.JSON(http.StatusOK, system.VersionResponse{
		Version:     h.buildInfo.Version,
		Commit:      h.buildInfo.Commit,
		BuildDate:   h.buildInfo.BuildDate,
		BuildNumber: h.buildInfo.BuildNumber,
		GoVersion:   h.buildInfo.GoVersion,
		Platform:    h.buildInfo.OS + "/" + h.buildInfo.Arch,
	})
}
