package callbacks

import (
	"context"

	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/internal/callbacks"
)

// OnStart 触发上下文中所有处理器的 OnStart。
//
// 组件实现者在执行业务逻辑前调用，返回的上下文必须继续向下传递，
// 以便 OnEnd/OnError 拿到处理器在 OnStart 中写入的数据。
func OnStart[T any](ctx context.Context, input T) context.Context {
	ctx, _ = callbacks.On(ctx, input, callbacks.OnStartHandle[T], TimingOnStart, true)

	return ctx
}

// OnEnd 触发上下文中所有处理器的 OnEnd。
func OnEnd[T any](ctx context.Context, output T) context.Context {
	ctx, _ = callbacks.On(ctx, output, callbacks.OnEndHandle[T], TimingOnEnd, false)

	return ctx
}

// OnError 触发上下文中所有处理器的 OnError。
func OnError(ctx context.Context, err error) context.Context {
	ctx, _ = callbacks.On(ctx, err, callbacks.OnErrorHandle, TimingOnError, false)

	return ctx
}

// EnsureRunInfo 确保上下文携带当前组件的运行信息。
//
// 组件在触发 OnStart 之前调用。
func EnsureRunInfo(ctx context.Context, typ string, comp components.Component) context.Context {
	return callbacks.EnsureRunInfo(ctx, typ, comp)
}

// ReuseHandlers 复用上下文中已有的处理器，并替换运行信息。
func ReuseHandlers(ctx context.Context, info *RunInfo) context.Context {
	return callbacks.ReuseHandlers(ctx, info)
}

// InitCallbacks 使用给定的运行信息和处理器初始化上下文，丢弃上下文中已有的处理器。
func InitCallbacks(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	return callbacks.InitCallbacks(ctx, info, handlers...)
}

// AppendHandlers 在上下文已有的处理器之后追加处理器，并设置运行信息。
func AppendHandlers(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	return callbacks.AppendHandlers(ctx, info, handlers...)
}
