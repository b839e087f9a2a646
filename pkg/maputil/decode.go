// Package maputil map[string]any 형태의 느슨한 입력을 구조체로 디코딩합니다.
package maputil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Option 디코딩 동작을 변경합니다.
type Option func(*mapstructure.DecoderConfig)

// WithErrorUnused 구조체에 없는 키가 입력에 포함되면 에러를 반환합니다.
func WithErrorUnused() Option {
	return func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = true
	}
}

// WithStrictTypes 문자열 "42"를 정수로 변환하는 등의 느슨한 타입 변환을 끕니다.
func WithStrictTypes() Option {
	return func(c *mapstructure.DecoderConfig) {
		c.WeaklyTypedInput = false
	}
}

// Decode input을 T로 디코딩합니다.
//
// 기본 동작:
//   - json 태그를 필드명으로 사용합니다.
//   - 느슨한 타입 변환을 허용합니다. ("42" -> 42, 42.0 -> 42)
//   - "10s" 같은 문자열을 time.Duration으로 변환합니다.
func Decode[T any](input any, opts ...Option) (*T, error) {
	out := new(T)
	if err := DecodeTo(input, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTo input을 output이 가리키는 값에 디코딩합니다.
func DecodeTo[T any](input any, output *T, opts ...Option) error {
	if output == nil {
		return errors.New("디코딩 결과를 저장할 output 포인터가 nil입니다")
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			stringToDurationHook(),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}

	return nil
}

func stringToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != durationType {
			return data, nil
		}
		return time.ParseDuration(strings.TrimSpace(data.(string)))
	}
}
