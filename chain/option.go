package chain

import (
	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/memory"
)

// Options 链调用的通用选项。
type Options struct {
	// Memory 对话历史，为 nil 时不拼接历史
	Memory memory.Memory

	// Stop 停止词，传给每一次模型调用
	Stop []string

	// ModelOptions 透传给模型后端的选项
	ModelOptions []model.Option

	// Handlers 本次调用的回调处理器，只作用于最外层的链，
	// 嵌套的链和模型后端通过上下文继承
	Handlers []callbacks.Handler
}

// Option 链调用的函数式选项。
type Option struct {
	apply func(opts *Options)
}

// WithMemory 设置对话历史。
func WithMemory(m memory.Memory) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Memory = m
		},
	}
}

// WithStop 设置停止词。
func WithStop(stop ...string) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Stop = stop
		},
	}
}

// WithModelOptions 追加透传给模型后端的选项。
//
//	out, err := chain.Apply(ctx, c, backend, inputs,
//		chain.WithModelOptions(model.WithTemperature(0.2), model.WithMaxTokens(512)))
func WithModelOptions(opts ...model.Option) Option {
	return Option{
		apply: func(o *Options) {
			o.ModelOptions = append(o.ModelOptions, opts...)
		},
	}
}

// WithCallbacks 追加本次调用的回调处理器。
func WithCallbacks(handlers ...callbacks.Handler) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Handlers = append(opts.Handlers, handlers...)
		},
	}
}

// GetCommonOptions 从选项列表中提取通用选项，base 提供默认值。
func GetCommonOptions(base *Options, opts ...Option) *Options {
	if base == nil {
		base = &Options{}
	}

	for i := range opts {
		opt := opts[i]
		if opt.apply != nil {
			opt.apply(base)
		}
	}

	return base
}

// nested 返回传给嵌套链的选项，不包含回调处理器。
func (o *Options) nested() []Option {
	return []Option{
		WithMemory(o.Memory),
		WithStop(o.Stop...),
		WithModelOptions(o.ModelOptions...),
	}
}

// withoutMemory 返回不带对话历史的副本。
func (o *Options) withoutMemory() *Options {
	n := *o
	n.Memory = nil
	return &n
}

// modelOptions 返回模型调用选项，链的停止词排在最后。
func (o *Options) modelOptions() []model.Option {
	if len(o.Stop) == 0 {
		return o.ModelOptions
	}

	opts := make([]model.Option, 0, len(o.ModelOptions)+1)
	opts = append(opts, o.ModelOptions...)
	return append(opts, model.WithStop(o.Stop))
}
