package callbacks

import (
	"context"

	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/internal/generic"
)

// InitCallbacks 初始化回调系统并返回包含管理器的上下文。
func InitCallbacks(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	mgr, ok := newManager(info, handlers...)
	if ok {
		return ctxWithManager(ctx, mgr)
	}

	return ctxWithManager(ctx, nil)
}

// ReuseHandlers 复用现有回调处理器，仅更新运行信息。
func ReuseHandlers(ctx context.Context, info *RunInfo) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, info)
	}

	return ctxWithManager(ctx, cbm.withRunInfo(info))
}

// EnsureRunInfo 确保上下文中的回调管理器携带运行信息。
//
// 父组件执行 OnStart 后会清空运行信息，子组件调用本函数补充自己的运行信息。
func EnsureRunInfo(ctx context.Context, typ string, comp components.Component) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, &RunInfo{
			Type:      typ,
			Component: comp,
		})
	}

	if cbm.runInfo == nil {
		return ReuseHandlers(ctx, &RunInfo{
			Type:      typ,
			Component: comp,
		})
	}

	return ctx
}

// AppendHandlers 在现有处理器链后追加新的处理器。
func AppendHandlers(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, info, handlers...)
	}

	nh := make([]Handler, len(cbm.handlers)+len(handlers))
	copy(nh[:len(cbm.handlers)], cbm.handlers)
	copy(nh[len(cbm.handlers):], handlers)

	return InitCallbacks(ctx, info, nh...)
}

// Handle 回调处理函数类型，T 为输入输出数据的类型。
type Handle[T any] func(context.Context, T, *RunInfo, []Handler) (context.Context, T)

// On 执行指定时机的回调处理。
//
// start 为 true 时，运行信息从管理器转移到上下文中，
// 之后的 OnEnd/OnError 从上下文读取，嵌套的子组件则可以写入自己的运行信息。
func On[T any](ctx context.Context, inOut T, handle Handle[T], timing CallbackTiming, start bool) (context.Context, T) {
	mgr, ok := managerFromCtx(ctx)
	if !ok {
		return ctx, inOut
	}

	nMgr := *mgr

	var info *RunInfo
	if start {
		info = nMgr.runInfo
		nMgr.runInfo = nil
		ctx = context.WithValue(ctx, CtxRunInfoKey{}, info)
	} else {
		if nMgr.runInfo != nil {
			info = nMgr.runInfo
		} else {
			info, _ = ctx.Value(CtxRunInfoKey{}).(*RunInfo)
		}
	}

	hs := make([]Handler, 0, len(nMgr.handlers)+len(nMgr.globalHandlers))
	for _, handler := range append(nMgr.handlers, nMgr.globalHandlers...) {
		timingChecker, ok_ := handler.(TimingChecker)
		if !ok_ || timingChecker.Needed(ctx, info, timing) {
			hs = append(hs, handler)
		}
	}

	var out T
	ctx, out = handle(ctx, inOut, info, hs)

	return ctxWithManager(ctx, &nMgr), out
}

// OnStartHandle 逆序执行处理器的 OnStart，后注册的先执行。
func OnStartHandle[T any](ctx context.Context, input T, runInfo *RunInfo, handlers []Handler) (context.Context, T) {
	for _, handler := range generic.Reverse(handlers) {
		ctx = handler.OnStart(ctx, runInfo, input)
	}

	return ctx, input
}

// OnEndHandle 顺序执行处理器的 OnEnd，与 OnStartHandle 对称。
func OnEndHandle[T any](ctx context.Context, output T, runInfo *RunInfo, handlers []Handler) (context.Context, T) {
	for _, handler := range handlers {
		ctx = handler.OnEnd(ctx, runInfo, output)
	}

	return ctx, output
}

// OnErrorHandle 顺序执行处理器的 OnError。
func OnErrorHandle(ctx context.Context, err error, runInfo *RunInfo, handlers []Handler) (context.Context, error) {
	for _, handler := range handlers {
		ctx = handler.OnError(ctx, runInfo, err)
	}

	return ctx, err
}
