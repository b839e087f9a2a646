package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/httputil"
	"github.com/labstack/echo/v4"
)

var (
	// ErrAppKeyRequired App Key가 헤더와 쿼리 파라미터 모두에 없을 때 반환됩니다.
	ErrAppKeyRequired = httputil.NewBadRequestError("app_key는 필수입니다 (X-App-Key 헤더 또는 app_key 쿼리 파라미터)")

	// ErrApplicationIDRequired Application ID를 어디에서도 찾을 수 없을 때 반환됩니다.
	ErrApplicationIDRequired = httputil.NewBadRequestError("application_id는 필수입니다")

	ErrBodyTooLarge   = echo.NewHTTPError(http.StatusRequestEntityTooLarge, constants.ErrMsgRequestEntityTooLarge)
	ErrBodyReadFailed = httputil.NewBadRequestError("요청 본문을 읽을 수 없습니다")
	ErrInvalidJSON    = httputil.NewBadRequestError("잘못된 JSON 형식입니다")

	ErrUnsupportedMediaType = echo.NewHTTPError(http.StatusUnsupportedMediaType, constants.ErrMsgUnsupportedMediaType)
)

// newErrPanicRecovered 복구된 panic 값을 Internal 에러로 변환합니다.
func newErrPanicRecovered(r any) error {
	return apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
}
