package chain

import (
	"context"
	"fmt"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/schema"
)

// CallbackInput 链调用的回调输入。
type CallbackInput struct {
	// Inputs 链的命名输入
	Inputs map[string]string
	// Extra 额外信息
	Extra map[string]any
}

// CallbackOutput 链调用的回调输出。
type CallbackOutput struct {
	// Generation 链的原始结果
	Generation *schema.Generation
	// Extra 额外信息
	Extra map[string]any
}

// ConvCallbackInput 将通用回调输入转换为链回调输入。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case map[string]string:
		return &CallbackInput{Inputs: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 将通用回调输出转换为链回调输出。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case *schema.Generation:
		return &CallbackOutput{Generation: t}
	default:
		return nil
	}
}

// generateFunc 链自身的生成逻辑。
type generateFunc func(ctx context.Context, o *Options) (*schema.Generation, error)

// runGenerate 解析选项，在链的生成逻辑前后触发回调。
//
// 通过 WithCallbacks 传入的处理器追加到上下文中，嵌套的链与模型后端从上下文继承。
func runGenerate(ctx context.Context, c Chain, inputs map[string]string, opts []Option,
	fn generateFunc) (gen *schema.Generation, err error) {

	o := GetCommonOptions(nil, opts...)
	typ := typeOf(c)

	if len(o.Handlers) > 0 {
		ctx = callbacks.AppendHandlers(ctx, &callbacks.RunInfo{
			Name:      typ,
			Type:      typ,
			Component: components.ComponentOfChain,
		}, o.Handlers...)
		o.Handlers = nil
	} else {
		ctx = callbacks.EnsureRunInfo(ctx, typ, components.ComponentOfChain)
	}

	ctx = callbacks.OnStart(ctx, &CallbackInput{Inputs: inputs})

	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	gen, err = fn(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}

	_ = callbacks.OnEnd(ctx, &CallbackOutput{Generation: gen})

	return gen, nil
}
