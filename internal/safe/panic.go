package safe

import (
	"fmt"
	"runtime/debug"
)

// panicErr 包装 panic 信息和堆栈跟踪的错误类型。
type panicErr struct {
	info  any    // panic 信息
	stack []byte // 堆栈跟踪信息
}

func (p *panicErr) Error() string {
	return fmt.Sprintf("panic error: %v, \nstack: %s", p.info, string(p.stack))
}

// Unwrap 当 panic 的值本身是 error 时返回它，便于 errors.Is 判断。
func (p *panicErr) Unwrap() error {
	if err, ok := p.info.(error); ok {
		return err
	}
	return nil
}

// NewPanicErr 创建新的 panic 错误。
// 包装 panic 信息和堆栈跟踪，实现 error 接口，可打印完整错误信息。
func NewPanicErr(info any, stack []byte) error {
	return &panicErr{
		info,
		stack,
	}
}

// Call 执行 fn，并把 fn 内部发生的 panic 转换为错误返回。
//
// 用于扇出的 goroutine 中：单个调用崩溃只会让本次调用失败，
// 而不会让整个进程退出。
func Call(fn func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = NewPanicErr(e, debug.Stack())
		}
	}()

	return fn()
}
