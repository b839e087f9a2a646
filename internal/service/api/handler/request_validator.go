// Package handler API 버전과 무관하게 공유되는 요청 처리 헬퍼를 제공합니다.
package handler

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// requestValidator 요청 구조체의 korean 태그를 필드명으로 보고하는 validator입니다.
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("korean"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// fieldMessage 태그별 메시지 형식입니다. 문자열 필드는 text, 그 외는 number를 사용합니다.
type fieldMessage struct {
	text   string
	number string
}

var fieldMessages = map[string]fieldMessage{
	"required": {text: "%s는 필수입니다", number: "%s는 필수입니다"},
	"min":      {text: "%s는 최소 %s자 이상이어야 합니다", number: "%s는 %s 이상이어야 합니다"},
	"gte":      {text: "%s는 최소 %s자 이상이어야 합니다", number: "%s는 %s 이상이어야 합니다"},
	"max":      {text: "%s는 최대 %s자까지 입력 가능합니다", number: "%s는 최대 %s까지 입력 가능합니다"},
	"lte":      {text: "%s는 최대 %s자까지 입력 가능합니다", number: "%s는 최대 %s까지 입력 가능합니다"},
}

// ValidateRequest req의 validate 태그를 검사합니다.
func ValidateRequest(req any) error {
	return requestValidator.Struct(req)
}

// FormatValidationError 첫 번째 필드 검증 실패를 한글 메시지로 바꿉니다.
// validator 에러가 아니면 원본 메시지를 그대로 돌려줍니다.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	msg, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s 검증 실패: %s", fe.Field(), fe.Tag())
	}

	format := msg.number
	if fe.Kind() == reflect.String {
		format = msg.text
	}
	if fe.Tag() == "required" {
		return fmt.Sprintf(format, fe.Field())
	}
	return fmt.Sprintf(format, fe.Field(), fe.Param())
}
