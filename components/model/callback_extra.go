package model

import (
	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/schema"
)

// Config 回调中可见的模型配置。
type Config struct {
	// Model 模型名称
	Model string
	// MaxTokens 最大令牌数
	MaxTokens int
	// Temperature 温度参数
	Temperature float32
	// Stop 停止词
	Stop []string
}

// TokenUsage 令牌用量。
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CallbackInput 模型调用的回调输入。
type CallbackInput struct {
	// Messages 发送给模型的消息
	Messages []schema.Message
	// Config 本次调用的配置
	Config *Config
	// Extra 额外信息
	Extra map[string]any
}

// CallbackOutput 模型调用的回调输出。
type CallbackOutput struct {
	// Generation 模型返回的结果
	Generation *schema.Generation
	// Config 本次调用的配置
	Config *Config
	// TokenUsage 令牌用量，后端无法提供时为 nil
	TokenUsage *TokenUsage
	// Extra 额外信息
	Extra map[string]any
}

// ConvCallbackInput 将通用回调输入转换为模型回调输入。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case []schema.Message:
		return &CallbackInput{
			Messages: t,
		}
	default:
		return nil
	}
}

// ConvCallbackOutput 将通用回调输出转换为模型回调输出。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case *schema.Generation:
		return &CallbackOutput{
			Generation: t,
		}
	default:
		return nil
	}
}
