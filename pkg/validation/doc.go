// Package validation 설정 파일 등 외부 입력값의 유효성 검사 함수를 제공합니다.
//
// 모든 함수는 유효하지 않은 입력에 대해 원인을 설명하는 error를 반환하며 동시에 호출해도 안전합니다.
package validation
