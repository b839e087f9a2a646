package log

// discardFormatter 표준 로거 자체의 포맷팅을 생략하기 위한 포맷터입니다.
// 출력은 io.Discard로 버려지고 실제 포맷팅은 router가 수행합니다.
type discardFormatter struct{}

func (discardFormatter) Format(_ *Entry) ([]byte, error) {
	return nil, nil
}
