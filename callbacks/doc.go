/*
Package callbacks 为 limitchain 提供统一的回调处理能力。

组件（提示词模板、模型后端、链、文档切分器与加载器）在执行前后触发
OnStart、OnEnd、OnError，日志记录、链路追踪、指标收集等横切关注点
通过注册 Handler 实现，而不侵入组件本身。

处理器有两种注入方式：
  - AppendGlobalHandlers 在进程初始化阶段注册全局处理器；
  - chain.WithCallbacks 为单次链调用注入处理器。
*/
package callbacks
