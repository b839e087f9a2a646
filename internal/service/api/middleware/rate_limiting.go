package middleware

import (
	"sync"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/httputil"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL 이 시간 동안 요청이 없던 IP의 버킷은 정리 대상입니다.
	limiterIdleTTL = 10 * time.Minute

	// limiterSweepInterval 유휴 버킷 정리를 시도하는 최소 간격입니다.
	limiterSweepInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors 클라이언트 IP별 Token Bucket 저장소입니다.
// 유휴 버킷은 allow 호출 중에 limiterSweepInterval마다 정리됩니다.
type visitors struct {
	mu sync.Mutex

	byIP  map[string]*visitor
	limit rate.Limit
	burst int

	now       func() time.Time
	lastSweep time.Time
}

func newVisitors(requestsPerSecond float64, burst int) *visitors {
	return &visitors{
		byIP:  make(map[string]*visitor),
		limit: rate.Limit(requestsPerSecond),
		burst: burst,
		now:   time.Now,
	}
}

// allow ip의 버킷에서 토큰 하나를 소비할 수 있는지 확인합니다.
func (v *visitors) allow(ip string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) >= limiterSweepInterval {
		v.sweep(now)
	}

	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = now

	return vis.limiter.AllowN(now, 1)
}

func (v *visitors) sweep(now time.Time) {
	for ip, vis := range v.byIP {
		if now.Sub(vis.lastSeen) > limiterIdleTTL {
			delete(v.byIP, ip)
		}
	}
	v.lastSweep = now
}

func (v *visitors) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.byIP)
}

// RateLimiting 클라이언트 IP별 요청 속도를 제한합니다.
// 한도를 넘은 요청은 Retry-After 헤더와 함께 429로 거절됩니다.
//
// Panics:
//   - requestsPerSecond 또는 burst가 0 이하인 경우
func RateLimiting(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 || burst <= 0 {
		panic("RateLimiting: requestsPerSecond와 burst는 양수여야 합니다")
	}

	return rateLimitingWith(newVisitors(requestsPerSecond, burst))
}

func rateLimitingWith(v *visitors) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if v.allow(ip) {
				return next(c)
			}

			applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
				"remote_ip":  ip,
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Warn("요청 속도 제한 초과")

			c.Response().Header().Set("Retry-After", "1")
			return httputil.NewTooManyRequestsError(constants.ErrMsgTooManyRequests)
		}
	}
}
