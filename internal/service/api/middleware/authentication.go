package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/darkkaiser/notification-reconciler/internal/service/api/auth"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

const componentAuth = "api.middleware.auth"

// RequireAuthentication 요청의 자격 증명으로 애플리케이션을 인증하고,
// 성공하면 auth.WithApplication으로 Context에 저장한 뒤 다음 핸들러를 호출합니다.
//
// App Key는 X-App-Key 헤더, app_key 쿼리 순서로 찾습니다.
// Application ID는 X-Application-Id 헤더, application_id 쿼리, JSON 본문의 application_id 순서로 찾습니다.
// 본문을 읽은 경우 다음 핸들러가 다시 읽을 수 있도록 되돌려 놓습니다.
//
// authenticator가 nil이면 panic이 발생합니다.
func RequireAuthentication(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	if authenticator == nil {
		panic("Authenticator는 필수입니다")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			appKey := appKeyFrom(c)
			if appKey == "" {
				return ErrAppKeyRequired
			}

			applicationID, err := applicationIDFrom(c)
			switch {
			case err != nil:
				return err
			case applicationID == "":
				return ErrApplicationIDRequired
			}

			app, err := authenticator.Authenticate(applicationID, appKey)
			if err != nil {
				return err
			}
			auth.WithApplication(c, app)

			return next(c)
		}
	}
}

func appKeyFrom(c echo.Context) string {
	if key := c.Request().Header.Get(constants.HeaderAppKey); key != "" {
		return key
	}

	key := c.QueryParam(constants.QueryParamAppKey)
	if key != "" {
		// 쿼리 문자열은 접근 로그나 프록시에 그대로 남습니다.
		applog.WithComponentAndFields(componentAuth, applog.Fields{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"remote_ip": c.RealIP(),
		}).Warn("App Key가 쿼리 파라미터로 전달되었습니다. X-App-Key 헤더를 사용하세요")
	}
	return key
}

func applicationIDFrom(c echo.Context) (string, error) {
	if id := c.Request().Header.Get(constants.HeaderApplicationID); id != "" {
		return id, nil
	}
	if id := c.QueryParam(constants.QueryParamApplicationID); id != "" {
		return id, nil
	}

	body, err := peekBody(c.Request())
	if err != nil || len(body) == 0 {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", ErrInvalidJSON
	}
	return gjson.GetBytes(body, "application_id").String(), nil
}

// peekBody 요청 본문 전체를 읽고 req.Body를 같은 내용으로 교체합니다.
func peekBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, ErrBodyTooLarge
		}
		return nil, ErrBodyReadFailed
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}
