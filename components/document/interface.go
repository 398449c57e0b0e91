package document

import (
	"context"
	"errors"

	"github.com/favbox/limitchain/schema"
)

// Loader 文档加载器，能力为 文本/路径 -> 文档。
//
// 加载失败时返回错误，不返回部分结果。
type Loader interface {
	// LoadFromMemory 从内存中的文本加载文档。
	LoadFromMemory(ctx context.Context, text string, opts ...LoaderOption) ([]*schema.Document, error)

	// LoadFromPath 从本地文件加载文档，文档的 _source 元数据为该路径。
	LoadFromPath(ctx context.Context, path string, opts ...LoaderOption) ([]*schema.Document, error)
}

// Splitter 文档切分器。
//
// 长度的度量方式由实现决定，内置实现按 rune 计数。
// overlap 必须严格小于 maxLength，否则属于编程错误。
type Splitter interface {
	// Split 把文本切分为长度不超过 maxLength 的片段。
	//
	// 只有无法再切分的原子单元才可能超出 maxLength。
	Split(text string, maxLength, overlap int) ([]string, error)

	// SplitDocuments 先把相邻的短文档合并到 maxLength+overlap 以内，
	// 再切分合并后仍然过长的文档。
	//
	// 合并与切分的来源记录在结果文档的元数据中。
	SplitDocuments(ctx context.Context, docs []*schema.Document, maxLength, overlap int,
		opts ...SplitterOption) ([]*schema.Document, error)
}

// ErrInvalidUTF8 加载的内容不是合法的 UTF-8 文本。
var ErrInvalidUTF8 = errors.New("document is not valid UTF-8")
