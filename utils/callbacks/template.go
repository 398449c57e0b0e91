package callbacks

import (
	"context"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/chain"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/document"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
)

// NewHandlerHelper 创建组件回调处理器构建器。
func NewHandlerHelper() *HandlerHelper {
	return &HandlerHelper{}
}

// HandlerHelper 回调处理器构建器。
// 为不同组件类型配置类型化的回调处理器，回调输入输出在分发前转换为组件自己的类型。
//
// 使用示例：
//
//	handler := NewHandlerHelper().
//		ChatModel(&ModelCallbackHandler{...}).
//		Chain(&ChainCallbackHandler{...}).
//		Handler()
//	out, err := chain.Apply(ctx, c, backend, inputs, chain.WithCallbacks(handler))
type HandlerHelper struct {
	promptHandler    *PromptCallbackHandler
	chatModelHandler *ModelCallbackHandler
	chainHandler     *ChainCallbackHandler
	loaderHandler    *LoaderCallbackHandler
	splitterHandler  *SplitterCallbackHandler
}

// Handler 返回构建的回调处理器。
func (c *HandlerHelper) Handler() callbacks.Handler {
	return &handlerTemplate{c}
}

// Prompt 设置提示词模板组件的回调处理器。
func (c *HandlerHelper) Prompt(handler *PromptCallbackHandler) *HandlerHelper {
	c.promptHandler = handler
	return c
}

// ChatModel 设置模型后端组件的回调处理器。
func (c *HandlerHelper) ChatModel(handler *ModelCallbackHandler) *HandlerHelper {
	c.chatModelHandler = handler
	return c
}

// Chain 设置链组件的回调处理器。
func (c *HandlerHelper) Chain(handler *ChainCallbackHandler) *HandlerHelper {
	c.chainHandler = handler
	return c
}

// Loader 设置文档加载器组件的回调处理器。
func (c *HandlerHelper) Loader(handler *LoaderCallbackHandler) *HandlerHelper {
	c.loaderHandler = handler
	return c
}

// Splitter 设置文档切分器组件的回调处理器。
func (c *HandlerHelper) Splitter(handler *SplitterCallbackHandler) *HandlerHelper {
	c.splitterHandler = handler
	return c
}

// handlerTemplate 根据组件类型把回调事件分发到对应的处理器。
//
// 分发前 Needed 已经过滤掉未配置的处理器与回调函数。
type handlerTemplate struct {
	*HandlerHelper
}

// OnStart 处理组件开始执行事件。
func (c *handlerTemplate) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	switch info.Component {
	case components.ComponentOfPrompt:
		return c.promptHandler.OnStart(ctx, info, prompt.ConvCallbackInput(input))
	case components.ComponentOfChatModel:
		return c.chatModelHandler.OnStart(ctx, info, model.ConvCallbackInput(input))
	case components.ComponentOfChain:
		return c.chainHandler.OnStart(ctx, info, chain.ConvCallbackInput(input))
	case components.ComponentOfLoader:
		return c.loaderHandler.OnStart(ctx, info, document.ConvLoaderCallbackInput(input))
	case components.ComponentOfSplitter:
		return c.splitterHandler.OnStart(ctx, info, document.ConvSplitterCallbackInput(input))
	default:
		return ctx
	}
}

// OnEnd 处理组件执行结束事件。
func (c *handlerTemplate) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	switch info.Component {
	case components.ComponentOfPrompt:
		return c.promptHandler.OnEnd(ctx, info, prompt.ConvCallbackOutput(output))
	case components.ComponentOfChatModel:
		return c.chatModelHandler.OnEnd(ctx, info, model.ConvCallbackOutput(output))
	case components.ComponentOfChain:
		return c.chainHandler.OnEnd(ctx, info, chain.ConvCallbackOutput(output))
	case components.ComponentOfLoader:
		return c.loaderHandler.OnEnd(ctx, info, document.ConvLoaderCallbackOutput(output))
	case components.ComponentOfSplitter:
		return c.splitterHandler.OnEnd(ctx, info, document.ConvSplitterCallbackOutput(output))
	default:
		return ctx
	}
}

// OnError 处理组件执行错误事件。
func (c *handlerTemplate) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	switch info.Component {
	case components.ComponentOfPrompt:
		return c.promptHandler.OnError(ctx, info, err)
	case components.ComponentOfChatModel:
		return c.chatModelHandler.OnError(ctx, info, err)
	case components.ComponentOfChain:
		return c.chainHandler.OnError(ctx, info, err)
	case components.ComponentOfLoader:
		return c.loaderHandler.OnError(ctx, info, err)
	case components.ComponentOfSplitter:
		return c.splitterHandler.OnError(ctx, info, err)
	default:
		return ctx
	}
}

// Needed 检查指定时机是否需要执行回调。
func (c *handlerTemplate) Needed(ctx context.Context, info *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	if info == nil {
		return false
	}

	switch info.Component {
	case components.ComponentOfPrompt:
		return c.promptHandler != nil && c.promptHandler.Needed(ctx, info, timing)
	case components.ComponentOfChatModel:
		return c.chatModelHandler != nil && c.chatModelHandler.Needed(ctx, info, timing)
	case components.ComponentOfChain:
		return c.chainHandler != nil && c.chainHandler.Needed(ctx, info, timing)
	case components.ComponentOfLoader:
		return c.loaderHandler != nil && c.loaderHandler.Needed(ctx, info, timing)
	case components.ComponentOfSplitter:
		return c.splitterHandler != nil && c.splitterHandler.Needed(ctx, info, timing)
	default:
		return false
	}
}

// needed 按时机判断对应的回调函数是否已设置。
func needed(timing callbacks.CallbackTiming, onStart, onEnd, onError bool) bool {
	switch timing {
	case callbacks.TimingOnStart:
		return onStart
	case callbacks.TimingOnEnd:
		return onEnd
	case callbacks.TimingOnError:
		return onError
	default:
		return false
	}
}

// PromptCallbackHandler 提示词模板组件的回调处理器。
type PromptCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *prompt.CallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *prompt.CallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed 检查指定时机是否需要执行回调。
func (ch *PromptCallbackHandler) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// ModelCallbackHandler 模型后端组件的回调处理器。
type ModelCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *model.CallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *model.CallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed 检查指定时机是否需要执行回调。
func (ch *ModelCallbackHandler) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// ChainCallbackHandler 链组件的回调处理器。
type ChainCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *chain.CallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *chain.CallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed 检查指定时机是否需要执行回调。
func (ch *ChainCallbackHandler) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// LoaderCallbackHandler 文档加载器组件的回调处理器。
type LoaderCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *document.LoaderCallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *document.LoaderCallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed 检查指定时机是否需要执行回调。
func (ch *LoaderCallbackHandler) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// SplitterCallbackHandler 文档切分器组件的回调处理器。
type SplitterCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *document.SplitterCallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *document.SplitterCallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed 检查指定时机是否需要执行回调。
func (ch *SplitterCallbackHandler) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}
