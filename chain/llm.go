package chain

import (
	"context"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/schema"
)

// defaultLLMTemplate LLMChain 未指定模板时使用的模板。
var defaultLLMTemplate = prompt.MustFromString("{question}")

var _ Chain = &LLMChain{}

// LLMChain 最简单的链：填充模板，拼接对话历史，调用一次模型。
type LLMChain struct {
	template *prompt.PromptTemplate
}

// NewLLMChain 创建 LLMChain，tpl 为 nil 时使用 "{question}"。
func NewLLMChain(tpl *prompt.PromptTemplate) *LLMChain {
	return &LLMChain{template: tpl}
}

// InputKeys 返回模板的全部变量。
func (c *LLMChain) InputKeys() []string {
	return c.PromptTemplate().Variables()
}

func (c *LLMChain) OutputKeys() []string {
	return []string{KeyAnswer}
}

func (c *LLMChain) PromptTemplate() *prompt.PromptTemplate {
	if c.template == nil {
		return defaultLLMTemplate
	}

	return c.template
}

func (c *LLMChain) PreparePrompt(inputs map[string]string) (schema.Message, error) {
	return DefaultPreparePrompt(c, inputs)
}

func (c *LLMChain) CreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	return DefaultCreateOutput(gen)
}

func (c *LLMChain) Generate(ctx context.Context, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	return runGenerate(ctx, c, inputs, opts, func(ctx context.Context, o *Options) (*schema.Generation, error) {
		return DefaultGenerate(ctx, c, backend, inputs, o.nested()...)
	})
}

func (c *LLMChain) GetType() string {
	return "LLMChain"
}
