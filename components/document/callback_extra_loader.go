package document

import (
	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/schema"
)

// LoaderCallbackInput 文档加载器回调的输入。
type LoaderCallbackInput struct {
	// Source 文档来源，从路径加载时为文件路径，从内存加载时为空
	Source string

	// Extra 额外信息
	Extra map[string]any
}

// LoaderCallbackOutput 文档加载器回调的输出。
type LoaderCallbackOutput struct {
	// Source 文档来源，与输入一致
	Source string

	// Docs 加载的文档
	Docs []*schema.Document

	// Extra 额外信息
	Extra map[string]any
}

// ConvLoaderCallbackInput 将通用回调输入转换为加载器回调输入。
//
//   - *LoaderCallbackInput：直接返回
//   - string：作为 Source 包装
//   - 其他类型：返回 nil
func ConvLoaderCallbackInput(src callbacks.CallbackInput) *LoaderCallbackInput {
	switch t := src.(type) {
	case *LoaderCallbackInput:
		return t
	case string:
		return &LoaderCallbackInput{
			Source: t,
		}
	default:
		return nil
	}
}

// ConvLoaderCallbackOutput 将通用回调输出转换为加载器回调输出。
func ConvLoaderCallbackOutput(src callbacks.CallbackOutput) *LoaderCallbackOutput {
	switch t := src.(type) {
	case *LoaderCallbackOutput:
		return t
	case []*schema.Document:
		return &LoaderCallbackOutput{
			Docs: t,
		}
	default:
		return nil
	}
}
