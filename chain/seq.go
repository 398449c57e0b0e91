package chain

import (
	"context"
	"fmt"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/internal/generic"
	"github.com/favbox/limitchain/schema"
)

// defaultJoinTemplate SeqChain 的默认连接模板。
var defaultJoinTemplate = prompt.MustFromString("\nbackground:\n{previous_output}\n\nquestion:\n{question}\n")

var _ Chain = &SeqChain{}

// SeqChain 顺序链：first 的回答作为背景，与 second 渲染出的问题拼接后再调用一次模型。
//
// 每次调用发起两次模型请求，对话历史分别拼接在两次请求之前。
type SeqChain struct {
	first    Chain
	second   Chain
	template *prompt.PromptTemplate
}

// NewSeqChain 创建 SeqChain，join 为 nil 时使用默认连接模板。
//
// 连接模板使用 previous_output 和 question 两个变量。
func NewSeqChain(first, second Chain, join *prompt.PromptTemplate) *SeqChain {
	return &SeqChain{
		first:    first,
		second:   second,
		template: join,
	}
}

// InputKeys 依次返回 second 与 first 的输入键，去掉重复。
func (c *SeqChain) InputKeys() []string {
	keys := append(c.second.InputKeys(), c.first.InputKeys()...)
	return generic.Dedup(keys)
}

func (c *SeqChain) OutputKeys() []string {
	return c.second.OutputKeys()
}

// PromptTemplate 返回连接模板。
func (c *SeqChain) PromptTemplate() *prompt.PromptTemplate {
	if c.template == nil {
		return defaultJoinTemplate
	}

	return c.template
}

// PreparePrompt 用 second 的模板渲染问题。
func (c *SeqChain) PreparePrompt(inputs map[string]string) (schema.Message, error) {
	return c.second.PreparePrompt(inputs)
}

func (c *SeqChain) CreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	return c.second.CreateOutput(gen)
}

func (c *SeqChain) Generate(ctx context.Context, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	return runGenerate(ctx, c, inputs, opts, func(ctx context.Context, o *Options) (*schema.Generation, error) {
		previous, err := c.first.Generate(ctx, backend, inputs, o.nested()...)
		if err != nil {
			return nil, err
		}

		background, err := previous.First()
		if err != nil {
			return nil, err
		}

		question, err := c.second.PreparePrompt(inputs)
		if err != nil {
			return nil, err
		}

		content, err := c.PromptTemplate().Format(map[string]string{
			KeyPreviousOutput: background.Content,
			KeyQuestion:       question.Content,
		})
		if err != nil {
			return nil, fmt.Errorf("format join template: %w", err)
		}

		msgs, err := withHistory(ctx, o.Memory, schema.UserMessage(content))
		if err != nil {
			return nil, err
		}

		return callBackend(ctx, backend, msgs, o)
	})
}

func (c *SeqChain) GetType() string {
	return "SeqChain"
}
