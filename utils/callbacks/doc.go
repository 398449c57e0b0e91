// Package callbacks 提供按组件类型分发的类型化回调处理器构建器。
package callbacks
