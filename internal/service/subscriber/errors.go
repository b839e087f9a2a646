package subscriber

import (
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
)

var (
	// ErrNotConnected NATS 서버와 연결되어 있지 않을 때 반환됩니다.
	ErrNotConnected = apperrors.New(apperrors.Unavailable, "NATS 서버와 연결되어 있지 않습니다")
)

func newErrConnectFailed(url string, cause error) error {
	return apperrors.Wrapf(cause, apperrors.Unavailable, "NATS 서버(%s)에 연결할 수 없습니다", url)
}

func newErrSubscribeFailed(subject string, cause error) error {
	return apperrors.Wrapf(cause, apperrors.ExecutionFailed, "NATS 주제(%s) 구독에 실패하였습니다", subject)
}

func newErrPublishFailed(subject string, cause error) error {
	return apperrors.Wrapf(cause, apperrors.ExecutionFailed, "NATS 주제(%s)로 해제 신호를 발행하지 못했습니다", subject)
}
