package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/pkg/cronx"
	"github.com/darkkaiser/notification-reconciler/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// 예: 123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11
var telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)

// newValidator 커스텀 태그(cors_origin, cron_spec, telegram_bot_token, readable_file)가 등록된 Validator를 생성합니다.
// 에러 메시지에는 Go 필드명 대신 json 태그 이름이 사용됩니다.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"cors_origin": func(fl validator.FieldLevel) bool {
			return validation.ValidateCORSOrigin(fl.Field().String()) == nil
		},
		"cron_spec": func(fl validator.FieldLevel) bool {
			return cronx.Validate(fl.Field().String()) == nil
		},
		"telegram_bot_token": func(fl validator.FieldLevel) bool {
			return telegramBotTokenRegex.MatchString(fl.Field().String())
		},
		"readable_file": func(fl validator.FieldLevel) bool {
			return validation.ValidateFile(fl.Field().String()) == nil
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("초기화 치명적 오류: '%s' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", tag, err))
		}
	}

	return v
}

// checkStruct 구조체를 태그 규칙에 따라 검증하고, 첫 번째 오류를 사용자 친화적인 메시지로 변환합니다.
func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	fe := validationErrors[0]
	path := strings.TrimPrefix(fe.Namespace(), "AppConfig.")

	switch fe.Tag() {
	case "unique":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s 내에 중복된 ID가 존재합니다 (설정 값을 확인해주세요)", path))
	case "cors_origin":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fe.Value()))
	case "cron_spec":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 Cron 표현식이 올바르지 않습니다: '%v' (형식: 초 분 시 일 월 요일, 예: 0 0 4 * * *)", path, fe.Value()))
	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, "텔레그램 BotToken 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)")
	case "required_if":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s는 필수입니다 (조건: %s)", path, fe.Param()))
	case "readable_file":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s에 지정된 파일을 읽을 수 없습니다: '%v'", path, fe.Value()))
	case "min", "max", "gt", "gte":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 값이 허용 범위를 벗어났습니다: '%v' (조건: %s=%s)", path, fe.Value(), fe.Tag(), fe.Param()))
	case "oneof":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 값은 [%s] 중 하나여야 합니다: '%v'", path, fe.Param(), fe.Value()))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s)", contextName, path, fe.Tag()))
}
