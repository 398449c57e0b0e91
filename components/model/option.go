package model

// Options 模型调用的通用选项。
type Options struct {
	// Temperature 控制输出的随机性，建议范围 0.0-2.0
	Temperature *float32

	// MaxTokens 限制生成的最大令牌数
	MaxTokens *int

	// Model 指定模型名称，覆盖后端的默认配置
	Model *string

	// Stop 停止词列表，生成到这些词时提前停止
	Stop []string

	// N 请求的候选数量
	N *int
}

// Option 模型调用的函数式选项。
type Option struct {
	apply func(opts *Options)

	implSpecificOptFn any
}

// WithTemperature 设置温度参数。
func WithTemperature(temperature float32) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Temperature = &temperature
		},
	}
}

// WithMaxTokens 设置最大令牌数。
func WithMaxTokens(maxTokens int) Option {
	return Option{
		apply: func(opts *Options) {
			opts.MaxTokens = &maxTokens
		},
	}
}

// WithModel 设置模型名称。
//
//	gen, err := backend.Generate(ctx, messages, model.WithModel("gpt-4o-mini"))
func WithModel(name string) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Model = &name
		},
	}
}

// WithStop 设置停止词。
//
// 多次设置时以最后一次为准。
func WithStop(stop []string) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Stop = stop
		},
	}
}

// WithN 设置候选数量，链只读取第一个候选。
func WithN(n int) Option {
	return Option{
		apply: func(opts *Options) {
			opts.N = &n
		},
	}
}

// WrapImplSpecificOptFn 包装后端实现特定的选项函数。
//
//	type OpenAIOption struct {
//		User string
//	}
//
//	opt := model.WrapImplSpecificOptFn(func(o *OpenAIOption) {
//		o.User = "limitchat"
//	})
func WrapImplSpecificOptFn[T any](optFn func(*T)) Option {
	return Option{
		implSpecificOptFn: optFn,
	}
}

// GetImplSpecificOptions 从选项列表中提取实现特定的选项，base 提供默认值。
func GetImplSpecificOptions[T any](base *T, opts ...Option) *T {
	if base == nil {
		base = new(T)
	}

	for i := range opts {
		opt := opts[i]
		if opt.implSpecificOptFn != nil {
			optFn, ok := opt.implSpecificOptFn.(func(*T))
			if ok {
				optFn(base)
			}
		}
	}

	return base
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
