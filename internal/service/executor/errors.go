package executor

import (
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
)

var (
	// ErrQueueFull 작업 큐가 가득 차서 작업을 받을 수 없을 때 반환됩니다.
	ErrQueueFull = apperrors.New(apperrors.Unavailable, "작업 큐가 가득 차서 요청을 처리할 수 없습니다")

	// ErrClosed 종료된 실행기에 작업을 제출했을 때 반환됩니다.
	ErrClosed = apperrors.New(apperrors.Unavailable, "실행기가 종료되어 작업을 받을 수 없습니다")

	// ErrNotRunning 시작되지 않은 실행기에 작업을 제출했을 때 반환됩니다.
	ErrNotRunning = apperrors.New(apperrors.Unavailable, "실행기가 아직 시작되지 않았습니다")

	// ErrNilTask nil 작업을 제출했을 때 반환됩니다.
	ErrNilTask = apperrors.New(apperrors.InvalidInput, "nil 작업은 제출할 수 없습니다")

	// ErrPanicRecovered 작업 실행 중 발생한 panic이 복구되었을 때 반환됩니다.
	ErrPanicRecovered = apperrors.New(apperrors.Internal, "작업 실행 중 패닉이 발생하여 복구되었습니다")
)
