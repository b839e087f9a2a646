// Package service 장기 실행 서비스의 공통 생명주기를 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service main에서 시작/종료를 관리하는 장기 실행 컴포넌트입니다.
//
// Start는 서비스를 구동한 뒤 즉시 반환합니다. 호출자는 Start 전에 wg.Add(1)을 수행하며,
// 서비스는 ctx가 취소되어 자원 정리를 마친 시점에 wg.Done()을 호출합니다.
// Start가 에러를 반환한 경우에도 wg.Done()은 반드시 호출됩니다.
type Service interface {
	Start(ctx context.Context, wg *sync.WaitGroup) error
}
