// Package middleware 해제 신호 API 서버의 Echo 미들웨어를 제공합니다.
//
// 권장 적용 순서:
//
//	e.Use(middleware.PanicRecovery())
//	e.Use(middleware.RequestID())
//	e.Use(middleware.RateLimiting(rps, burst))
//	e.Use(middleware.HTTPLogger())
package middleware
