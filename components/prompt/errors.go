package prompt

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVariable 填充时缺少必填变量。
	ErrMissingVariable = errors.New("missing variable")

	// ErrMalformedTemplate 模板语法错误，或持久化数据不满足模板不变量。
	ErrMalformedTemplate = errors.New("malformed template")
)

// MissingVariableError 指明缺少的必填变量。
//
// 可以通过 errors.Is(err, ErrMissingVariable) 判断，通过 errors.As 取出变量名。
type MissingVariableError struct {
	Key string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variable %q in values", e.Key)
}

func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariable
}

func malformed(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedTemplate, fmt.Sprintf(format, args...), pos)
}
