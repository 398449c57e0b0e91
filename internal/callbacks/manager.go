package callbacks

import "context"

// CtxManagerKey 上下文管理器键类型。
type CtxManagerKey struct{}

// CtxRunInfoKey 上下文运行信息键类型。
type CtxRunInfoKey struct{}

// manager 回调管理器，负责管理组件执行过程中的回调处理器链。
type manager struct {
	// globalHandlers 全局回调处理器集合，在组件专用处理器之后执行
	globalHandlers []Handler

	// handlers 调用方通过选项注入的回调处理器集合
	handlers []Handler

	// runInfo 当前组件的运行信息，OnStart 后被清空，留给子组件填充
	runInfo *RunInfo
}

// GlobalHandlers 全局回调处理器集合。
// 存储全局共享的回调处理器，在所有组件执行时都会被调用
var GlobalHandlers []Handler

// newManager 创建新的回调管理器实例。
// 没有任何处理器时返回 false
func newManager(runInfo *RunInfo, handlers ...Handler) (*manager, bool) {
	if len(handlers)+len(GlobalHandlers) == 0 {
		return nil, false
	}

	// 复制全局处理器以避免修改原始数据
	hs := make([]Handler, len(GlobalHandlers))
	copy(hs, GlobalHandlers)

	return &manager{
		globalHandlers: hs,
		handlers:       handlers,
		runInfo:        runInfo,
	}, true
}

// withRunInfo 创建指定运行信息的新管理器副本。
func (m *manager) withRunInfo(runInfo *RunInfo) *manager {
	if m == nil {
		return nil
	}

	n := *m
	n.runInfo = runInfo
	return &n
}

// managerFromCtx 从上下文中提取回调管理器的副本。
func managerFromCtx(ctx context.Context) (*manager, bool) {
	v := ctx.Value(CtxManagerKey{})
	m, ok := v.(*manager)
	if ok && m != nil {
		n := *m
		return &n, true
	}

	return nil, false
}

// ctxWithManager 将回调管理器存储到上下文中。
func ctxWithManager(ctx context.Context, manager *manager) context.Context {
	return context.WithValue(ctx, CtxManagerKey{}, manager)
}
