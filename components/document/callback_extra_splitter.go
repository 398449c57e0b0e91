package document

import (
	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/schema"
)

// SplitterCallbackInput 文档切分器回调的输入。
type SplitterCallbackInput struct {
	// Input 待切分的文档
	Input []*schema.Document

	// MaxLength 片段的最大长度
	MaxLength int

	// Overlap 相邻片段的最大重叠长度
	Overlap int

	// Extra 额外信息
	Extra map[string]any
}

// SplitterCallbackOutput 文档切分器回调的输出。
type SplitterCallbackOutput struct {
	// Output 合并与切分后的文档
	Output []*schema.Document

	// Extra 额外信息
	Extra map[string]any
}

// ConvSplitterCallbackInput 将通用回调输入转换为切分器回调输入。
func ConvSplitterCallbackInput(src callbacks.CallbackInput) *SplitterCallbackInput {
	switch t := src.(type) {
	case *SplitterCallbackInput:
		return t
	case []*schema.Document:
		return &SplitterCallbackInput{
			Input: t,
		}
	default:
		return nil
	}
}

// ConvSplitterCallbackOutput 将通用回调输出转换为切分器回调输出。
func ConvSplitterCallbackOutput(src callbacks.CallbackOutput) *SplitterCallbackOutput {
	switch t := src.(type) {
	case *SplitterCallbackOutput:
		return t
	case []*schema.Document:
		return &SplitterCallbackOutput{
			Output: t,
		}
	default:
		return nil
	}
}
