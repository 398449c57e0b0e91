// Package tracing 提供基于 OpenTelemetry 的回调处理器，为每次组件执行创建一个 span。
//
// 嵌套组件的 span 以上层组件的 span 为父节点。
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/model"
)

const instrumentationName = "github.com/favbox/limitchain"

// 属性键
const (
	AttrComponent        = attribute.Key("limitchain.component")
	AttrType             = attribute.Key("limitchain.type")
	AttrName             = attribute.Key("limitchain.name")
	AttrModel            = attribute.Key("limitchain.model")
	AttrPromptTokens     = attribute.Key("limitchain.usage.prompt_tokens")
	AttrCompletionTokens = attribute.Key("limitchain.usage.completion_tokens")
	AttrTotalTokens      = attribute.Key("limitchain.usage.total_tokens")
)

// Config 追踪处理器的配置。
type Config struct {
	// TracerProvider 为空时使用 otel.GetTracerProvider()
	TracerProvider trace.TracerProvider
}

type handler struct {
	tracer trace.Tracer
}

// NewHandler 创建追踪处理器，config 可以为空。
func NewHandler(config *Config) callbacks.Handler {
	if config == nil {
		config = &Config{}
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &handler{tracer: tp.Tracer(instrumentationName)}
}

func (h *handler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil {
		info = &callbacks.RunInfo{}
	}

	attrs := []attribute.KeyValue{
		AttrComponent.String(string(info.Component)),
		AttrType.String(info.Type),
	}
	if info.Name != "" {
		attrs = append(attrs, AttrName.String(info.Name))
	}
	if info.Component == components.ComponentOfChatModel {
		if in := model.ConvCallbackInput(input); in != nil && in.Config != nil {
			attrs = append(attrs, AttrModel.String(in.Config.Model))
		}
	}

	ctx, _ = h.tracer.Start(ctx, spanName(info), trace.WithAttributes(attrs...))

	return ctx
}

func (h *handler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	span := trace.SpanFromContext(ctx)

	if info != nil && info.Component == components.ComponentOfChatModel {
		if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
			span.SetAttributes(
				AttrPromptTokens.Int(out.TokenUsage.PromptTokens),
				AttrCompletionTokens.Int(out.TokenUsage.CompletionTokens),
				AttrTotalTokens.Int(out.TokenUsage.TotalTokens),
			)
		}
	}

	span.SetStatus(codes.Ok, "")
	span.End()

	return ctx
}

func (h *handler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	span := trace.SpanFromContext(ctx)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()

	return ctx
}

func spanName(info *callbacks.RunInfo) string {
	if info.Component == "" {
		return info.Type
	}

	return fmt.Sprintf("%s.%s", info.Component, info.Type)
}
