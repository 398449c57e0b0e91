package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	mockModel "github.com/favbox/limitchain/internal/mock/components/model"
	"github.com/favbox/limitchain/memory"
	"github.com/favbox/limitchain/schema"
)

func TestSeqChain(t *testing.T) {
	ctx := context.Background()

	first := NewLLMChain(prompt.MustFromString("{question1}"))
	second := NewLLMChain(prompt.MustFromString("{question2}"))

	t.Run("输入输出键", func(t *testing.T) {
		c := NewSeqChain(first, second, nil)
		assert.Equal(t, []string{"question2", "question1"}, c.InputKeys())
		assert.Equal(t, []string{KeyAnswer}, c.OutputKeys())

		dup := NewSeqChain(NewLLMChain(nil), NewLLMChain(prompt.MustFromString("{question} {extra}")), nil)
		assert.Equal(t, []string{"question", "extra"}, dup.InputKeys())
	})

	t.Run("两次调用", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)
		mem := memory.NewInMemory(schema.SystemMessage("sys"))

		gomock.InOrder(
			backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
					assert.Equal(t, []schema.Message{schema.SystemMessage("sys"), schema.UserMessage("what is LGTM?")}, msgs)
					return reply("looks good to me"), nil
				}),
			backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
					require.Len(t, msgs, 2)
					assert.Equal(t, schema.SystemMessage("sys"), msgs[0])
					assert.Equal(t, "\nbackground:\nlooks good to me\n\nquestion:\nsummarize in chinese\n", msgs[1].Content)
					return reply("看起来不错"), nil
				}),
		)

		out, err := Apply(ctx, NewSeqChain(first, second, nil), backend, map[string]string{
			"question1": "what is LGTM?",
			"question2": "summarize in chinese",
		}, WithMemory(mem))
		require.NoError(t, err)
		assert.Equal(t, "看起来不错", out[KeyAnswer].Content)
	})

	t.Run("自定义连接模板", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		var prompts []string
		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
				prompts = append(prompts, msgs[len(msgs)-1].Content)
				return reply("A"), nil
			}).Times(2)

		join := prompt.MustFromString("{previous_output} => {question}")
		_, err := Apply(ctx, NewSeqChain(first, second, join), backend, map[string]string{
			"question1": "q1",
			"question2": "q2",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"q1", "A => q2"}, prompts)
	})

	t.Run("第一条链失败时不发起第二次调用", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("unavailable")).Times(1)

		_, err := Apply(ctx, NewSeqChain(first, second, nil), backend, map[string]string{
			"question1": "q1",
			"question2": "q2",
		})
		assert.Error(t, err)
	})
}

// latencyBackend 按提示词中的延迟设置返回，回答为提示词本身的大写形式。
func latencyBackend(calls *int32, delays map[string]time.Duration) backendFunc {
	return func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
		atomic.AddInt32(calls, 1)
		last := msgs[len(msgs)-1].Content
		if d, ok := delays[last]; ok {
			time.Sleep(d)
		}
		return reply(strings.ToUpper(last)), nil
	}
}

func TestMapReduceChain(t *testing.T) {
	ctx := context.Background()

	t.Run("按子输入顺序汇总", func(t *testing.T) {
		var calls int32
		delays := map[string]time.Duration{
			"a": 60 * time.Millisecond,
			"b": 30 * time.Millisecond,
			"c": 0,
		}

		var reducePrompt []schema.Message
		var mu sync.Mutex
		base := latencyBackend(&calls, delays)
		backend := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			if strings.HasPrefix(msgs[len(msgs)-1].Content, "join:") {
				mu.Lock()
				reducePrompt = msgs
				mu.Unlock()
			}
			return base(ctx, msgs, opts...)
		})

		mem := memory.NewInMemory(schema.UserMessage("history"))
		c := NewMapReduceChain(NewLLMChain(nil), NewLLMChain(prompt.MustFromString("join: {question}")))

		out, err := Apply(ctx, c, backend, map[string]string{
			"question": "facts",
			"0":        `{"question": "a"}`,
			"1":        `{"question": "b"}`,
			"2":        `{"question": "c"}`,
		}, WithMemory(mem))
		require.NoError(t, err)

		assert.Equal(t, int32(4), calls)
		require.Len(t, reducePrompt, 2)
		assert.Equal(t, schema.UserMessage("history"), reducePrompt[0])
		assert.Equal(t, "join: facts\nA\nB\nC", reducePrompt[1].Content)
		assert.Equal(t, "JOIN: FACTS\nA\nB\nC", out[KeyAnswer].Content)
	})

	t.Run("按数值下标而非字典序排列", func(t *testing.T) {
		var calls int32
		var last string
		backend := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			atomic.AddInt32(&calls, 1)
			content := msgs[len(msgs)-1].Content
			if strings.HasPrefix(content, "r\n") {
				last = content
			}
			return reply(content), nil
		})

		inputs := map[string]string{"question": "r"}
		for i := 0; i < 11; i++ {
			inputs[fmt.Sprint(i)] = fmt.Sprintf(`{"question": "%d"}`, i)
		}

		_, err := Apply(ctx, NewMapReduceChain(NewLLMChain(nil), NewLLMChain(nil)), backend, inputs)
		require.NoError(t, err)
		assert.Equal(t, "r\n0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10", last)
	})

	t.Run("子调用不拼接对话历史", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)
		mem := memory.NewInMemory(schema.UserMessage("history"))

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
				if msgs[len(msgs)-1].Content == "sub" {
					assert.Len(t, msgs, 1)
				} else {
					assert.Len(t, msgs, 2)
				}
				return reply("ok"), nil
			}).Times(2)

		_, err := Apply(ctx, NewMapReduceChain(NewLLMChain(nil), NewLLMChain(nil)), backend, map[string]string{
			"question": "reduce",
			"7":        `{"question": "sub"}`,
		}, WithMemory(mem))
		require.NoError(t, err)
	})

	t.Run("跳过非法 JSON 并保留在汇总输入中", func(t *testing.T) {
		var calls int32
		var last string
		backend := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			atomic.AddInt32(&calls, 1)
			if content := msgs[len(msgs)-1].Content; content != "ok" {
				last = content
			}
			return reply("mapped"), nil
		})

		reducer := NewLLMChain(prompt.MustFromString("{question} [{5}]"))
		_, err := Apply(ctx, NewMapReduceChain(NewLLMChain(nil), reducer), backend, map[string]string{
			"question": "q",
			"1":        `{"question": "ok"}`,
			"5":        "not json",
		})
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls)
		assert.Equal(t, "q [not json]\nmapped", last)
	})

	t.Run("子调用失败", func(t *testing.T) {
		backend := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			if msgs[0].Content == "bad" {
				return nil, fmt.Errorf("rate limited")
			}
			return reply("fine"), nil
		})

		out, err := Apply(ctx, NewMapReduceChain(NewLLMChain(nil), NewLLMChain(nil)), backend, map[string]string{
			"question": "q",
			"0":        `{"question": "good"}`,
			"1":        `{"question": "bad"}`,
		})
		assert.ErrorContains(t, err, "rate limited")
		assert.Nil(t, out)
	})

	t.Run("子调用 panic 转换为错误", func(t *testing.T) {
		backend := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			if msgs[0].Content == "crash" {
				panic("backend crashed")
			}
			return reply("fine"), nil
		})

		_, err := Apply(ctx, NewMapReduceChain(NewLLMChain(nil), NewLLMChain(nil)), backend, map[string]string{
			"question": "q",
			"0":        `{"question": "crash"}`,
		})
		assert.ErrorContains(t, err, "backend crashed")
	})

	t.Run("键与模板", func(t *testing.T) {
		mapper := NewLLMChain(prompt.MustFromString("{doc}"))
		reducer := NewLLMChain(prompt.MustFromString("{question}"))
		c := NewMapReduceChain(mapper, reducer)

		assert.Equal(t, []string{"doc"}, c.InputKeys())
		assert.Equal(t, reducer.OutputKeys(), c.OutputKeys())
		assert.Same(t, mapper.PromptTemplate(), c.PromptTemplate())
	})
}

func TestMapRerankChain(t *testing.T) {
	ctx := context.Background()

	// scoreBackend 映射阶段回答 doc-<问题>，打分阶段按回答查表返回分数
	scoreBackend := func(calls *int32, scores map[string]string) backendFunc {
		return func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			atomic.AddInt32(calls, 1)
			content := msgs[len(msgs)-1].Content
			if !strings.HasPrefix(content, "score the relativeness") {
				return reply("doc-" + content), nil
			}
			for doc, score := range scores {
				if strings.Contains(content, "Doc: "+doc+"\n") {
					return reply(score), nil
				}
			}
			return nil, fmt.Errorf("unexpected prompt %q", content)
		}
	}

	inputs := map[string]string{
		"question": "what is a computer program",
		"1":        `{"question": "human"}`,
		"2":        `{"question": "program"}`,
		"3":        `{"question": "iphone"}`,
	}

	t.Run("返回最高分", func(t *testing.T) {
		var calls int32
		backend := scoreBackend(&calls, map[string]string{
			"doc-human":   `{"score": 0.2, "doc": "doc-human"}`,
			"doc-program": `{"score": 0.9, "doc": "doc-program"}`,
			"doc-iphone":  `{"score": 0.5, "doc": "doc-iphone"}`,
		})

		c := NewMapRerankChain(NewLLMChain(nil), nil)
		out, err := Apply(ctx, c, backend, inputs, WithMemory(memory.NewInMemory(schema.UserMessage("ignored"))))
		require.NoError(t, err)

		assert.Equal(t, int32(6), calls)
		assert.Equal(t, schema.Assistant, out[KeyAnswer].Role)
		assert.JSONEq(t, `{"score": 0.9, "doc": "doc-program"}`, out[KeyAnswer].Content)
		assert.Equal(t, "0.9", out[KeyScore].Content)
	})

	t.Run("同分取靠前的一项", func(t *testing.T) {
		var calls int32
		backend := scoreBackend(&calls, map[string]string{
			"doc-human":   `{"score": 0.5, "doc": "first"}`,
			"doc-program": `{"score": 0.5, "doc": "second"}`,
			"doc-iphone":  `{"score": 0.1, "doc": "third"}`,
		})

		gen, err := NewMapRerankChain(NewLLMChain(nil), nil).Generate(ctx, backend, inputs)
		require.NoError(t, err)
		assert.JSONEq(t, `{"score": 0.5, "doc": "first"}`, gen.Text[0].Content)
		assert.Equal(t, "0", gen.Info[infoKeyCandidate])
	})

	t.Run("打分结果不合法", func(t *testing.T) {
		for name, bad := range map[string]string{
			"不是 JSON":   "I would say 0.7",
			"缺少 score":  `{"doc": "x"}`,
			"score 非数值": `{"score": "high"}`,
		} {
			t.Run(name, func(t *testing.T) {
				var calls int32
				backend := scoreBackend(&calls, map[string]string{
					"doc-human":   `{"score": 0.2}`,
					"doc-program": bad,
					"doc-iphone":  `{"score": 0.5}`,
				})

				out, err := Apply(ctx, NewMapRerankChain(NewLLMChain(nil), nil), backend, inputs)
				assert.ErrorIs(t, err, ErrInvalidScore)
				assert.Nil(t, out)
			})
		}
	})

	t.Run("没有子输入", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		_, err := Apply(ctx, NewMapRerankChain(NewLLMChain(nil), nil), backend, map[string]string{
			"question": "q",
			"1":        "not json",
		})
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("键", func(t *testing.T) {
		c := NewMapRerankChain(NewLLMChain(prompt.MustFromString("{doc}")), nil)
		assert.Equal(t, []string{"doc", KeyQuestion}, c.InputKeys())
		assert.Equal(t, []string{KeyAnswer, KeyScore}, c.OutputKeys())
		assert.Equal(t, []string{KeyQuestion, KeyAnswer}, c.PromptTemplate().Variables())
	})

	t.Run("从内容中解析分数", func(t *testing.T) {
		c := NewMapRerankChain(NewLLMChain(nil), nil)
		out, err := c.CreateOutput(reply(`{"score": 0.75}`))
		require.NoError(t, err)
		assert.Equal(t, "0.75", out[KeyScore].Content)

		_, err = c.CreateOutput(reply("nope"))
		assert.ErrorIs(t, err, ErrInvalidScore)
	})
}
