package chain

import (
	"context"
	"strings"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/schema"
)

var _ Chain = &MapReduceChain{}

// MapReduceChain 对每个子输入并发调用 mapper，再把全部回答交给 reducer 汇总。
//
// 输入中键为非负整数的项是 JSON 编码的子输入，例如：
//
//	inputs := map[string]string{
//		"question": "connect the following facts into an article:",
//		"1":        `{"question": "What is human?"}`,
//		"2":        `{"question": "What is computer?"}`,
//	}
//
// 其余的键用于渲染 reducer 的提示词。N 个子输入共发起 N+1 次模型调用。
type MapReduceChain struct {
	mapper  Chain
	reducer Chain
}

// NewMapReduceChain 创建 MapReduceChain。
func NewMapReduceChain(mapper, reducer Chain) *MapReduceChain {
	return &MapReduceChain{mapper: mapper, reducer: reducer}
}

func (c *MapReduceChain) InputKeys() []string {
	return c.mapper.InputKeys()
}

func (c *MapReduceChain) OutputKeys() []string {
	return c.reducer.OutputKeys()
}

func (c *MapReduceChain) PromptTemplate() *prompt.PromptTemplate {
	return c.mapper.PromptTemplate()
}

func (c *MapReduceChain) PreparePrompt(inputs map[string]string) (schema.Message, error) {
	return DefaultPreparePrompt(c, inputs)
}

func (c *MapReduceChain) CreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	return DefaultCreateOutput(gen)
}

func (c *MapReduceChain) Generate(ctx context.Context, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	return runGenerate(ctx, c, inputs, opts, func(ctx context.Context, o *Options) (*schema.Generation, error) {
		subs, rest := splitIndexedInputs(c.GetType(), inputs)

		answers, err := mapPhase(ctx, c.mapper, backend, subs, o)
		if err != nil {
			return nil, err
		}

		msg, err := c.reducer.PreparePrompt(rest)
		if err != nil {
			return nil, err
		}
		msg.Content = msg.Content + "\n" + strings.Join(answers, "\n")

		msgs, err := withHistory(ctx, o.Memory, msg)
		if err != nil {
			return nil, err
		}

		return callBackend(ctx, backend, msgs, o)
	})
}

func (c *MapReduceChain) GetType() string {
	return "MapReduceChain"
}

// mapPhase 并发地为每个子输入渲染 mapper 的提示词并调用模型，按子输入顺序返回回答文本。
//
// 子调用不拼接对话历史。
func mapPhase(ctx context.Context, mapper Chain, backend model.Backend,
	subs []map[string]string, o *Options) ([]string, error) {

	single := o.withoutMemory()

	return fanOut(ctx, len(subs), func(ctx context.Context, i int) (string, error) {
		msg, err := mapper.PreparePrompt(subs[i])
		if err != nil {
			return "", err
		}

		gen, err := callBackend(ctx, backend, []schema.Message{msg}, single)
		if err != nil {
			return "", err
		}

		return gen.Text[0].Content, nil
	})
}
