package auth

import (
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/domain"
	"github.com/labstack/echo/v4"
)

// WithApplication 인증을 통과한 애플리케이션을 요청 Context에 기록합니다.
func WithApplication(c echo.Context, app *domain.Application) {
	c.Set(constants.ContextKeyApplication, app)
}

// ApplicationFrom 요청 Context에 기록된 애플리케이션을 꺼냅니다.
func ApplicationFrom(c echo.Context) (*domain.Application, error) {
	switch v := c.Get(constants.ContextKeyApplication).(type) {
	case *domain.Application:
		return v, nil
	case nil:
		return nil, ErrApplicationMissingInContext
	default:
		return nil, ErrApplicationTypeMismatch
	}
}

// MustApplication 인증 미들웨어 뒤에 등록된 핸들러에서 애플리케이션을 꺼냅니다.
// 미들웨어가 빠진 라우트 구성 오류라면 panic이 발생하고 PanicRecovery가 500으로 응답합니다.
func MustApplication(c echo.Context) *domain.Application {
	app, err := ApplicationFrom(c)
	if err != nil {
		panic(err)
	}
	return app
}
