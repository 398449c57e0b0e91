package chain

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/schema"
)

// defaultRerankTemplate MapRerankChain 默认的打分模板。
var defaultRerankTemplate = prompt.MustFromString(`score the relativeness of the document to the answer from 0.0 to 1.0
Question: {question}
Doc: {answer}

output format: \{"score": your score goes here, "doc": copy the Doc above \}
for example: \{"score": 0.5, "doc": "blablabla"\}`)

const infoKeyCandidate = "candidate_index"

// scoreParser 把打分结果解析为 JSON 对象。
var scoreParser = schema.NewMessageJSONParser[map[string]any](nil)

var _ Chain = &MapRerankChain{}

// MapRerankChain 对每个子输入并发调用 mapper，再并发地让模型为每个回答打分，返回分数最高的一项。
//
// 打分结果必须是包含数值 score 字段的 JSON 对象，任一结果不合法都会使整个调用失败。
// 分数相同时取子输入顺序靠前的一项。N 个子输入共发起 2N 次模型调用，不读取对话历史。
type MapRerankChain struct {
	mapper   Chain
	template *prompt.PromptTemplate
}

// NewMapRerankChain 创建 MapRerankChain，tpl 为 nil 时使用默认打分模板。
//
// 打分模板使用 question 和 answer 两个变量。
func NewMapRerankChain(mapper Chain, tpl *prompt.PromptTemplate) *MapRerankChain {
	return &MapRerankChain{
		mapper:   mapper,
		template: tpl,
	}
}

// InputKeys 返回 mapper 的输入键，并追加 question。
func (c *MapRerankChain) InputKeys() []string {
	return append(c.mapper.InputKeys(), KeyQuestion)
}

func (c *MapRerankChain) OutputKeys() []string {
	return []string{KeyAnswer, KeyScore}
}

// PromptTemplate 返回打分模板。
func (c *MapRerankChain) PromptTemplate() *prompt.PromptTemplate {
	if c.template == nil {
		return defaultRerankTemplate
	}

	return c.template
}

func (c *MapRerankChain) PreparePrompt(inputs map[string]string) (schema.Message, error) {
	return DefaultPreparePrompt(c, inputs)
}

// CreateOutput 输出胜出的 JSON 文本与分数。
func (c *MapRerankChain) CreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	first, err := gen.First()
	if err != nil {
		return nil, err
	}

	score, ok := gen.Info[KeyScore]
	if !ok {
		parsed, err := parseScore(context.Background(), first)
		if err != nil {
			return nil, err
		}
		score = formatScore(parsed)
	}

	return map[string]schema.Message{
		KeyAnswer: first,
		KeyScore:  schema.AssistantMessage(score),
	}, nil
}

func (c *MapRerankChain) Generate(ctx context.Context, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	return runGenerate(ctx, c, inputs, opts, func(ctx context.Context, o *Options) (*schema.Generation, error) {
		subs, _ := splitIndexedInputs(c.GetType(), inputs)
		if len(subs) == 0 {
			return nil, ErrNoCandidates
		}

		single := o.withoutMemory()

		answers, err := mapPhase(ctx, c.mapper, backend, subs, single)
		if err != nil {
			return nil, err
		}

		type scored struct {
			doc   map[string]any
			score float64
		}

		results, err := fanOut(ctx, len(answers), func(ctx context.Context, i int) (scored, error) {
			vars := map[string]string{KeyAnswer: answers[i]}
			if q, ok := inputs[KeyQuestion]; ok {
				vars[KeyQuestion] = q
			}

			msg, err := c.PreparePrompt(vars)
			if err != nil {
				return scored{}, err
			}

			gen, err := callBackend(ctx, backend, []schema.Message{msg}, single)
			if err != nil {
				return scored{}, err
			}

			doc, err := scoreParser.Parse(ctx, gen.Text[0])
			if err != nil {
				return scored{}, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}

			score, err := scoreOf(doc)
			if err != nil {
				return scored{}, err
			}

			return scored{doc: doc, score: score}, nil
		})
		if err != nil {
			return nil, err
		}

		best := 0
		for i := 1; i < len(results); i++ {
			if results[i].score > results[best].score {
				best = i
			}
		}

		content, err := sonic.ConfigStd.MarshalToString(results[best].doc)
		if err != nil {
			return nil, fmt.Errorf("marshal best candidate: %w", err)
		}

		return &schema.Generation{
			Text: []schema.Message{schema.AssistantMessage(content)},
			Info: map[string]string{
				KeyScore:         formatScore(results[best].score),
				infoKeyCandidate: strconv.Itoa(best),
			},
		}, nil
	})
}

func (c *MapRerankChain) GetType() string {
	return "MapRerankChain"
}

func parseScore(ctx context.Context, msg schema.Message) (float64, error) {
	doc, err := scoreParser.Parse(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	return scoreOf(doc)
}

func scoreOf(doc map[string]any) (float64, error) {
	v, ok := doc[KeyScore]
	if !ok {
		return 0, fmt.Errorf("%w: missing score field", ErrInvalidScore)
	}

	score, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: score is %T, not a number", ErrInvalidScore, v)
	}

	return score, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
