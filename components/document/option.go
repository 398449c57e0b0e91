package document

import (
	"context"

	"github.com/google/uuid"
)

// IDGenerator 为新产生的文档生成 ID。
type IDGenerator func(ctx context.Context) string

// DefaultIDGenerator 默认的 ID 生成器，返回随机 UUID。
func DefaultIDGenerator(_ context.Context) string {
	return uuid.NewString()
}

// LoaderOptions 文档加载器的通用选项。
type LoaderOptions struct {
	// IDGenerator 为加载的文档生成 ID，默认使用 DefaultIDGenerator
	IDGenerator IDGenerator

	// ExtraMeta 写入每个加载文档的额外元数据，不覆盖加载器自身写入的键
	ExtraMeta map[string]any
}

// LoaderOption 文档加载器的调用选项。
//
// 加载器实现可以在自己的包中定义选项结构体，
// 再通过 WrapLoaderImplSpecificOptFn 包装为该类型。
type LoaderOption struct {
	apply func(opts *LoaderOptions)

	implSpecificOptFn any
}

// WithLoaderIDGenerator 设置加载文档的 ID 生成器。
func WithLoaderIDGenerator(gen IDGenerator) LoaderOption {
	return LoaderOption{
		apply: func(opts *LoaderOptions) {
			opts.IDGenerator = gen
		},
	}
}

// WithExtraMeta 设置写入每个加载文档的额外元数据。
//
//	docs, err := loader.LoadFromPath(ctx, "notes.md",
//		document.WithExtraMeta(map[string]any{"tenant": "t1"}))
func WithExtraMeta(meta map[string]any) LoaderOption {
	return LoaderOption{
		apply: func(opts *LoaderOptions) {
			opts.ExtraMeta = meta
		},
	}
}

// WrapLoaderImplSpecificOptFn 包装加载器实现特定的选项函数。
//
//	type customOptions struct {
//		conf string
//	}
//
//	func WithConf(conf string) document.LoaderOption {
//		return document.WrapLoaderImplSpecificOptFn(func(o *customOptions) {
//			o.conf = conf
//		})
//	}
func WrapLoaderImplSpecificOptFn[T any](optFn func(*T)) LoaderOption {
	return LoaderOption{
		implSpecificOptFn: optFn,
	}
}

// GetLoaderImplSpecificOptions 从选项列表中提取加载器实现特定的选项，base 提供默认值。
func GetLoaderImplSpecificOptions[T any](base *T, opts ...LoaderOption) *T {
	if base == nil {
		base = new(T)
	}

	for i := range opts {
		opt := opts[i]
		if opt.implSpecificOptFn != nil {
			s, ok := opt.implSpecificOptFn.(func(*T))
			if ok {
				s(base)
			}
		}
	}

	return base
}

// GetLoaderCommonOptions 从选项列表中提取加载器的通用选项，base 提供默认值。
//
// 结果中的 IDGenerator 一定非空。
func GetLoaderCommonOptions(base *LoaderOptions, opts ...LoaderOption) *LoaderOptions {
	if base == nil {
		base = &LoaderOptions{}
	}

	for i := range opts {
		opt := opts[i]
		if opt.apply != nil {
			opt.apply(base)
		}
	}

	if base.IDGenerator == nil {
		base.IDGenerator = DefaultIDGenerator
	}

	return base
}

// SplitterOptions 文档切分器的通用选项。
type SplitterOptions struct {
	// IDGenerator 为合并文档与切分片段生成 ID，默认使用 DefaultIDGenerator
	IDGenerator IDGenerator
}

// SplitterOption 文档切分器的调用选项。
type SplitterOption struct {
	apply func(opts *SplitterOptions)

	implSpecificOptFn any
}

// WithSplitterIDGenerator 设置合并文档与切分片段的 ID 生成器。
func WithSplitterIDGenerator(gen IDGenerator) SplitterOption {
	return SplitterOption{
		apply: func(opts *SplitterOptions) {
			opts.IDGenerator = gen
		},
	}
}

// WrapSplitterImplSpecificOptFn 包装切分器实现特定的选项函数。
func WrapSplitterImplSpecificOptFn[T any](optFn func(*T)) SplitterOption {
	return SplitterOption{
		implSpecificOptFn: optFn,
	}
}

// GetSplitterImplSpecificOptions 从选项列表中提取切分器实现特定的选项，base 提供默认值。
func GetSplitterImplSpecificOptions[T any](base *T, opts ...SplitterOption) *T {
	if base == nil {
		base = new(T)
	}

	for i := range opts {
		opt := opts[i]
		if opt.implSpecificOptFn != nil {
			s, ok := opt.implSpecificOptFn.(func(*T))
			if ok {
				s(base)
			}
		}
	}

	return base
}

// GetSplitterCommonOptions 从选项列表中提取切分器的通用选项，base 提供默认值。
//
// 结果中的 IDGenerator 一定非空。
func GetSplitterCommonOptions(base *SplitterOptions, opts ...SplitterOption) *SplitterOptions {
	if base == nil {
		base = &SplitterOptions{}
	}

	for i := range opts {
		opt := opts[i]
		if opt.apply != nil {
			opt.apply(base)
		}
	}

	if base.IDGenerator == nil {
		base.IDGenerator = DefaultIDGenerator
	}

	return base
}
