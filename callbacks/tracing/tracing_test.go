package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/chain"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/model"
	mockmodel "github.com/favbox/limitchain/internal/mock/components/model"
	"github.com/favbox/limitchain/schema"
)

func newRecorder() (*tracetest.SpanRecorder, callbacks.Handler) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	return sr, NewHandler(&Config{TracerProvider: tp})
}

func TestNestedChainSpans(t *testing.T) {
	sr, h := newRecorder()

	ctrl := gomock.NewController(t)
	backend := mockmodel.NewMockBackend(ctrl)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&schema.Generation{Text: []schema.Message{schema.AssistantMessage("ok")}}, nil).Times(2)

	c := chain.NewSeqChain(chain.NewLLMChain(nil), chain.NewLLMChain(nil), nil)
	_, err := chain.Apply(context.Background(), c, backend, map[string]string{"question": "q"}, chain.WithCallbacks(h))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	child, parent := spans[0], spans[1]
	assert.Equal(t, "Chain.LLMChain", child.Name())
	assert.Equal(t, "Chain.SeqChain", parent.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
	assert.Equal(t, codes.Ok, parent.Status().Code)
}

func TestErrorSpan(t *testing.T) {
	sr, h := newRecorder()

	ctrl := gomock.NewController(t)
	backend := mockmodel.NewMockBackend(ctrl)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))

	_, err := chain.Apply(context.Background(), chain.NewLLMChain(nil), backend,
		map[string]string{"question": "q"}, chain.WithCallbacks(h))
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Status().Description, "down")
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestModelSpanAttributes(t *testing.T) {
	sr, h := newRecorder()

	ctx := callbacks.InitCallbacks(context.Background(), &callbacks.RunInfo{
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	}, h)
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{Config: &model.Config{Model: "gpt"}})
	_ = callbacks.OnEnd(ctx, &model.CallbackOutput{TokenUsage: &model.TokenUsage{TotalTokens: 9}})

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "gpt", attrs[string(AttrModel)])
	assert.Equal(t, int64(9), attrs[string(AttrTotalTokens)])
	assert.Equal(t, "ChatModel.OpenAI", spans[0].Name())
}
