// Package openai 实现基于 OpenAI 兼容接口的模型后端。
//
// 通过 BaseURL 可以接入 DeepSeek、Ollama 等兼容 OpenAI Chat Completions 的服务。
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/schema"
)

// Generation.Info 中的键名
const (
	InfoPromptTokens     = "prompt_tokens"
	InfoCompletionTokens = "completion_tokens"
	InfoTotalTokens      = "total_tokens"
	InfoFinishReason     = "finish_reason"
	InfoModel            = "model"
)

// ErrNoChoices 服务端没有返回任何候选。
var ErrNoChoices = errors.New("openai: no choices in response")

// Config 后端配置。
type Config struct {
	// APIKey 接口密钥
	APIKey string
	// BaseURL 接口地址，为空时使用 OpenAI 官方地址
	BaseURL string
	// Model 模型名称，必填
	Model string
	// Temperature 温度参数，可被调用选项覆盖
	Temperature *float32
	// MaxTokens 最大令牌数，可被调用选项覆盖
	MaxTokens *int
	// N 候选数量，可被调用选项覆盖
	N *int
	// Timeout 单次请求超时，0 表示不限制
	Timeout time.Duration
	// HTTPClient 自定义 HTTP 客户端，设置后忽略 Timeout
	HTTPClient *http.Client
}

// Options 本后端特有的调用选项。
type Options struct {
	// User 终端用户标识，透传给服务端
	User string
}

// WithUser 设置终端用户标识。
func WithUser(user string) model.Option {
	return model.WrapImplSpecificOptFn(func(o *Options) {
		o.User = user
	})
}

// Backend 基于 go-openai 的模型后端，客户端在构造时创建一次，之后可以并发使用。
type Backend struct {
	cli  *openai.Client
	conf *Config
}

var _ model.Backend = &Backend{}

// NewBackend 创建模型后端。
func NewBackend(_ context.Context, config *Config) (*Backend, error) {
	if config == nil {
		return nil, errors.New("openai: config is required")
	}
	if config.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	cfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	switch {
	case config.HTTPClient != nil:
		cfg.HTTPClient = config.HTTPClient
	case config.Timeout > 0:
		cfg.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Backend{
		cli:  openai.NewClientWithConfig(cfg),
		conf: config,
	}, nil
}

// GetType 返回后端类型。
func (b *Backend) GetType() string {
	return "OpenAI"
}

// Generate 按顺序发送消息，每个候选返回一条消息。
func (b *Backend) Generate(ctx context.Context, messages []schema.Message, opts ...model.Option) (gen *schema.Generation, err error) {
	o := model.GetCommonOptions(&model.Options{
		Temperature: b.conf.Temperature,
		MaxTokens:   b.conf.MaxTokens,
		Model:       &b.conf.Model,
		N:           b.conf.N,
	}, opts...)
	implOpts := model.GetImplSpecificOptions(&Options{}, opts...)

	req := b.buildRequest(messages, o, implOpts)
	conf := &model.Config{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}

	ctx = callbacks.EnsureRunInfo(ctx, b.GetType(), components.ComponentOfChatModel)
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{
		Messages: messages,
		Config:   conf,
	})

	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	resp, err := b.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	gen = toGeneration(resp)

	_ = callbacks.OnEnd(ctx, &model.CallbackOutput{
		Generation: gen,
		Config:     conf,
		TokenUsage: &model.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	})

	return gen, nil
}

func (b *Backend) buildRequest(messages []schema.Message, o *model.Options, implOpts *Options) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    b.conf.Model,
		Messages: msgs,
		Stop:     o.Stop,
		User:     implOpts.User,
	}
	if o.Model != nil && *o.Model != "" {
		req.Model = *o.Model
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		req.MaxTokens = *o.MaxTokens
	}
	if o.N != nil {
		req.N = *o.N
	}

	return req
}

func toGeneration(resp openai.ChatCompletionResponse) *schema.Generation {
	gen := &schema.Generation{
		Text: make([]schema.Message, 0, len(resp.Choices)),
		Info: map[string]string{
			InfoPromptTokens:     strconv.Itoa(resp.Usage.PromptTokens),
			InfoCompletionTokens: strconv.Itoa(resp.Usage.CompletionTokens),
			InfoTotalTokens:      strconv.Itoa(resp.Usage.TotalTokens),
			InfoFinishReason:     string(resp.Choices[0].FinishReason),
			InfoModel:            resp.Model,
		},
	}

	for _, c := range resp.Choices {
		role := schema.RoleType(c.Message.Role)
		if role == "" {
			role = schema.Assistant
		}
		gen.Text = append(gen.Text, schema.Message{
			Role:    role,
			Content: c.Message.Content,
		})
	}

	return gen
}
