package callbacks

import (
	"context"

	"github.com/favbox/limitchain/components"
)

// RunInfo 回调运行信息结构体，用于在回调处理器中传递组件执行时的上下文信息。
type RunInfo struct {
	// Name 用于显示的组件名称，并非唯一标识
	Name string
	// Type 组件的具体类型标识，描述组件的实现类型
	Type string
	// Component 组件在 limitchain 中的分类类型
	// 如 ChatModel、Chain、DocumentSplitter 等预定义组件类型
	Component components.Component
}

// CallbackInput 回调输入类型。
//
// 作为组件输入到回调处理器的统一类型抽象。
type CallbackInput any

// CallbackOutput 回调输出类型。
//
// 作为组件输出到回调处理器的统一类型抽象。
type CallbackOutput any

// Handler 回调处理器接口。
//
// 定义了组件执行生命周期中的三个回调时机。
type Handler interface {
	// OnStart 组件开始执行时触发。
	OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context

	// OnEnd 组件正常执行结束时触发。
	OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context

	// OnError 组件执行出错时触发。
	OnError(ctx context.Context, info *RunInfo, err error) context.Context
}

// CallbackTiming 回调时机类型。
type CallbackTiming uint8

// TimingChecker 回调时机检查器接口。
//
// 用于动态判断是否需要在特定时机执行回调逻辑
type TimingChecker interface {
	// Needed 判断在指定时机是否需要执行回调。
	Needed(ctx context.Context, info *RunInfo, timing CallbackTiming) bool
}
