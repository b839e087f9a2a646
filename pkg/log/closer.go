package log

import (
	"errors"
	"io"
	"sync/atomic"
)

// closer router를 먼저 닫은 뒤 로그 파일들을 닫습니다.
// 여러 번 호출해도 안전합니다.
type closer struct {
	files  []io.Closer
	router *router

	closed atomic.Bool
}

func (c *closer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.router != nil {
		c.router.close()
	}

	var errs error
	for _, f := range c.files {
		if f == nil {
			continue
		}
		if s, ok := f.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
		if err := f.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
