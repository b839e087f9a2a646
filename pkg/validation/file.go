package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ValidateFile path가 지금 열어서 읽을 수 있는 일반 파일인지 확인합니다.
func ValidateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("파일 경로가 비어 있습니다")
	}

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%q: 파일이 존재하지 않습니다", path)
	case err != nil:
		return fmt.Errorf("%q: 파일을 열 수 없습니다: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%q: 파일 정보를 읽을 수 없습니다: %w", path, err)
	}
	if mode := info.Mode(); !mode.IsRegular() {
		return fmt.Errorf("%q: 일반 파일이 아닙니다 (mode=%s)", path, mode)
	}
	return nil
}
