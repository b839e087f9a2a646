package auth

import (
	"fmt"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/httputil"
)

var (
	// ErrApplicationMissingInContext 인증 미들웨어를 거치지 않은 요청에서 애플리케이션을 꺼내려 할 때 반환됩니다.
	ErrApplicationMissingInContext = apperrors.New(apperrors.Internal, "요청 Context에 인증된 애플리케이션이 없습니다 (인증 미들웨어 누락)")

	ErrApplicationTypeMismatch = apperrors.New(apperrors.Internal, "요청 Context의 애플리케이션 값 타입이 올바르지 않습니다")
)

// NewErrInvalidApplicationID 등록되지 않은 application_id에 대한 401 에러입니다.
func NewErrInvalidApplicationID(id string) error {
	return httputil.NewUnauthorizedError(fmt.Sprintf("등록되지 않은 application_id입니다 (ID: %s)", id))
}

// NewErrInvalidAppKey app_key 불일치에 대한 401 에러입니다. 어느 쪽이 틀렸는지는 응답에 드러내지 않습니다.
func NewErrInvalidAppKey(id string) error {
	return httputil.NewUnauthorizedError(fmt.Sprintf("app_key가 유효하지 않습니다 (application_id: %s)", id))
}
