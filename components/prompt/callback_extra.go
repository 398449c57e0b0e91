package prompt

import (
	"context"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
)

// CallbackInput 模板填充的回调输入。
type CallbackInput struct {
	// Variables 填充使用的变量
	Variables map[string]string
	// Template 被填充的模板
	Template *PromptTemplate
	// Extra 额外信息
	Extra map[string]any
}

// CallbackOutput 模板填充的回调输出。
type CallbackOutput struct {
	// Result 填充结果
	Result string
	// Template 被填充的模板
	Template *PromptTemplate
	// Extra 额外信息
	Extra map[string]any
}

// ConvCallbackInput 将通用回调输入转换为模板回调输入。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case map[string]string:
		return &CallbackInput{Variables: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 将通用回调输出转换为模板回调输出。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case string:
		return &CallbackOutput{Result: t}
	default:
		return nil
	}
}

// FormatWithCallbacks 填充模板并触发 ChatTemplate 组件的回调。
func FormatWithCallbacks(ctx context.Context, t *PromptTemplate, values map[string]string) (result string, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, t.GetType(), components.ComponentOfPrompt)
	ctx = callbacks.OnStart(ctx, &CallbackInput{
		Variables: values,
		Template:  t,
	})

	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	result, err = t.Format(values)
	if err != nil {
		return "", err
	}

	_ = callbacks.OnEnd(ctx, &CallbackOutput{
		Result:   result,
		Template: t,
	})

	return result, nil
}

// GetType 返回组件类型名称。
func (t *PromptTemplate) GetType() string {
	return "PromptTemplate"
}
