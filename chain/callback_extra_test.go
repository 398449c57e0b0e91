package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/schema"
)

func TestConvChain(t *testing.T) {
	assert.NotNil(t, ConvCallbackInput(&CallbackInput{}))
	assert.NotNil(t, ConvCallbackInput(map[string]string{}))
	assert.Nil(t, ConvCallbackInput("asd"))

	assert.NotNil(t, ConvCallbackOutput(&CallbackOutput{}))
	assert.NotNil(t, ConvCallbackOutput(&schema.Generation{}))
	assert.Nil(t, ConvCallbackOutput("asd"))
}

// recorder 记录回调事件
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) handler() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			if info.Component == components.ComponentOfChain {
				r.add("start:" + info.Type)
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if info.Component == components.ComponentOfChain {
				r.add("end:" + info.Type)
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			r.add("error:" + info.Type)
			return ctx
		}).Build()
}

func TestChainCallbacks(t *testing.T) {
	ctx := context.Background()
	ok := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
		return reply("ok"), nil
	})

	t.Run("嵌套链各自触发且只触发一次", func(t *testing.T) {
		r := &recorder{}
		c := NewSeqChain(NewLLMChain(nil), NewLLMChain(nil), nil)

		_, err := Apply(ctx, c, ok, map[string]string{"question": "q"}, WithCallbacks(r.handler()))
		require.NoError(t, err)

		assert.Equal(t, []string{
			"start:SeqChain",
			"start:LLMChain",
			"end:LLMChain",
			"end:SeqChain",
		}, r.events)
	})

	t.Run("失败时触发 OnError", func(t *testing.T) {
		r := &recorder{}
		failing := backendFunc(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
			return nil, errors.New("down")
		})

		_, err := Apply(ctx, NewLLMChain(nil), failing, map[string]string{"question": "q"}, WithCallbacks(r.handler()))
		require.Error(t, err)
		assert.Equal(t, []string{"start:LLMChain", "error:LLMChain"}, r.events)
	})

	t.Run("回调输入为链的命名输入", func(t *testing.T) {
		var got map[string]string
		h := callbacks.NewHandlerBuilder().
			OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
				if in := ConvCallbackInput(input); in != nil {
					got = in.Inputs
				}
				return ctx
			}).Build()

		_, err := Apply(ctx, NewLLMChain(nil), ok, map[string]string{"question": "q"}, WithCallbacks(h))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"question": "q"}, got)
	})
}
