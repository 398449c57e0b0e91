package callbacks

import "github.com/favbox/limitchain/internal/callbacks"

// RunInfo 回调运行时信息类型别名。
//
// 包含组件执行过程中的上下文信息：名称、实现类型和组件分类。
type RunInfo = callbacks.RunInfo

// CallbackInput 回调输入类型别名。
//
// 具体的输入类型由组件定义，例如 chain.CallbackInput、model.CallbackInput，
// 需要通过各组件包提供的 ConvCallbackInput 函数转换。
//
//	chainInput := chain.ConvCallbackInput(in)
//	if chainInput == nil {
//		// 不是链的回调输入，直接忽略
//		return ctx
//	}
type CallbackInput = callbacks.CallbackInput

// CallbackOutput 回调输出类型别名。
type CallbackOutput = callbacks.CallbackOutput

// Handler 回调处理器接口类型别名。
type Handler = callbacks.Handler

// AppendGlobalHandlers 追加全局回调处理器。
//
// 全局回调处理器在所有组件中执行，位于调用方注入的处理器之后。
// 注意：此函数不是线程安全的，只能在进程初始化期间调用。
func AppendGlobalHandlers(handlers ...Handler) {
	callbacks.GlobalHandlers = append(callbacks.GlobalHandlers, handlers...)
}

// CallbackTiming 回调时机枚举类型。
type CallbackTiming = callbacks.CallbackTiming

const (
	// TimingOnStart 组件开始执行时机
	TimingOnStart CallbackTiming = iota
	// TimingOnEnd 组件结束执行时机
	TimingOnEnd
	// TimingOnError 组件错误执行时机
	TimingOnError
)

// TimingChecker 回调时机检查器接口。
//
// 通过 NewHandlerBuilder 构建的处理器自动实现此接口，未设置的时机会被跳过。
type TimingChecker = callbacks.TimingChecker
