package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/memory"
	"github.com/favbox/limitchain/schema"
)

const (
	// KeyAnswer 默认的输出键
	KeyAnswer = "answer"
	// KeyScore MapRerankChain 的分数输出键
	KeyScore = "score"
	// KeyQuestion 默认模板中的问题变量
	KeyQuestion = "question"
	// KeyPreviousOutput SeqChain 连接模板中第一条链的输出变量
	KeyPreviousOutput = "previous_output"
)

var (
	// ErrNoCandidates MapRerankChain 没有任何可以打分的子输入。
	ErrNoCandidates = errors.New("no candidates to rerank")

	// ErrInvalidScore 打分结果中缺少数值类型的 score 字段。
	ErrInvalidScore = errors.New("invalid score")
)

// Chain 模型调用链接口。
//
// InputKeys/OutputKeys 声明输入输出键，PreparePrompt 把输入渲染为一条用户消息，
// CreateOutput 把模型结果映射为命名输出，Generate 完成一次完整的调用。
// 实现可以直接使用 DefaultPreparePrompt、DefaultCreateOutput 和 DefaultGenerate。
type Chain interface {
	InputKeys() []string
	OutputKeys() []string
	PromptTemplate() *prompt.PromptTemplate
	PreparePrompt(inputs map[string]string) (schema.Message, error)
	CreateOutput(gen *schema.Generation) (map[string]schema.Message, error)
	Generate(ctx context.Context, backend model.Backend, inputs map[string]string, opts ...Option) (*schema.Generation, error)
}

// DefaultPreparePrompt 用链的模板填充输入，返回用户消息。
func DefaultPreparePrompt(c Chain, inputs map[string]string) (schema.Message, error) {
	content, err := c.PromptTemplate().Format(inputs)
	if err != nil {
		return schema.Message{}, fmt.Errorf("prepare prompt: %w", err)
	}

	return schema.UserMessage(content), nil
}

// DefaultCreateOutput 把第一个候选作为 answer 输出。
func DefaultCreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	first, err := gen.First()
	if err != nil {
		return nil, err
	}

	return map[string]schema.Message{KeyAnswer: first}, nil
}

// DefaultGenerate 渲染提示词，在前面拼接对话历史快照，发起一次模型调用。
func DefaultGenerate(ctx context.Context, c Chain, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	o := GetCommonOptions(nil, opts...)

	msg, err := c.PreparePrompt(inputs)
	if err != nil {
		return nil, err
	}

	msgs, err := withHistory(ctx, o.Memory, msg)
	if err != nil {
		return nil, err
	}

	return callBackend(ctx, backend, msgs, o)
}

// Apply 执行链并返回命名输出，失败时不会返回部分结果。
func Apply(ctx context.Context, c Chain, backend model.Backend,
	inputs map[string]string, opts ...Option) (map[string]schema.Message, error) {

	gen, err := c.Generate(ctx, backend, inputs, opts...)
	if err != nil {
		return nil, err
	}

	out, err := c.CreateOutput(gen)
	if err != nil {
		return nil, fmt.Errorf("%s: create output: %w", typeOf(c), err)
	}

	return out, nil
}

// Predict 与 Apply 相同。
func Predict(ctx context.Context, c Chain, backend model.Backend,
	inputs map[string]string, opts ...Option) (map[string]schema.Message, error) {

	return Apply(ctx, c, backend, inputs, opts...)
}

// withHistory 返回 memory 的快照后接 msgs，memory 为 nil 时直接返回 msgs。
func withHistory(ctx context.Context, mem memory.Memory, msgs ...schema.Message) ([]schema.Message, error) {
	if mem == nil {
		return msgs, nil
	}

	history, err := mem.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	return append(history, msgs...), nil
}

// callBackend 发起一次模型调用，保证返回的结果至少包含一个候选。
func callBackend(ctx context.Context, backend model.Backend, msgs []schema.Message, o *Options) (*schema.Generation, error) {
	gen, err := backend.Generate(ctx, msgs, o.modelOptions()...)
	if err != nil {
		return nil, fmt.Errorf("backend generate: %w", err)
	}
	if _, err = gen.First(); err != nil {
		return nil, err
	}

	return gen, nil
}

func typeOf(c Chain) string {
	if typ, ok := components.GetType(c); ok {
		return typ
	}

	return "Chain"
}
