package contract

import "context"

// Task 실행기에 제출되는 작업 단위입니다.
// ctx는 실행기가 종료를 시작하면 취소됩니다.
type Task func(ctx context.Context)

// Executor 작업을 호출자와 분리된 실행 단위에서 처리합니다.
type Executor interface {
	// Submit 작업을 제출하고 즉시 반환합니다. 절대 블로킹하지 않습니다.
	// 큐가 가득 찼거나 종료된 경우 에러를 반환하며 작업은 실행되지 않습니다.
	Submit(task Task) error
}
