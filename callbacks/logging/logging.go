// Package logging 提供基于 logrus 的回调处理器，把组件的开始、结束与错误写入日志。
package logging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/chain"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/document"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
)

// Config 日志处理器的配置。
type Config struct {
	// Logger 日志输出，为空时使用 logrus.StandardLogger()
	Logger logrus.FieldLogger
	// Level 开始与结束事件的日志级别，默认 Debug；错误事件固定为 Error
	Level logrus.Level
}

type startKey struct{}

type handler struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

// NewHandler 创建日志处理器，config 可以为空。
//
//	ctx = callbacks.InitCallbacks(ctx, nil, logging.NewHandler(&logging.Config{Level: logrus.InfoLevel}))
func NewHandler(config *Config) callbacks.Handler {
	if config == nil {
		config = &Config{}
	}

	h := &handler{
		logger: config.Logger,
		level:  config.Level,
	}
	if h.logger == nil {
		h.logger = logrus.StandardLogger()
	}
	if h.level == logrus.PanicLevel {
		h.level = logrus.DebugLevel
	}

	return h
}

func (h *handler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	fields := runFields(info)
	for k, v := range inputFields(info, input) {
		fields[k] = v
	}
	h.log(fields, "start")

	return context.WithValue(ctx, startKey{}, time.Now())
}

func (h *handler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	fields := runFields(info)
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		fields["elapsed"] = time.Since(start).String()
	}
	for k, v := range outputFields(info, output) {
		fields[k] = v
	}
	h.log(fields, "end")

	return ctx
}

func (h *handler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	fields := runFields(info)
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		fields["elapsed"] = time.Since(start).String()
	}
	h.logger.WithFields(fields).WithError(err).Error("error")

	return ctx
}

func (h *handler) log(fields logrus.Fields, msg string) {
	entry := h.logger.WithFields(fields)
	switch h.level {
	case logrus.TraceLevel:
		entry.Trace(msg)
	case logrus.DebugLevel:
		entry.Debug(msg)
	case logrus.InfoLevel:
		entry.Info(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	default:
		entry.Error(msg)
	}
}

func runFields(info *callbacks.RunInfo) logrus.Fields {
	if info == nil {
		return logrus.Fields{}
	}

	fields := logrus.Fields{
		"component": string(info.Component),
		"type":      info.Type,
	}
	if info.Name != "" {
		fields["name"] = info.Name
	}

	return fields
}

func inputFields(info *callbacks.RunInfo, input callbacks.CallbackInput) logrus.Fields {
	if info == nil {
		return nil
	}

	switch info.Component {
	case components.ComponentOfChain:
		if in := chain.ConvCallbackInput(input); in != nil {
			return logrus.Fields{"inputs": len(in.Inputs)}
		}
	case components.ComponentOfChatModel:
		if in := model.ConvCallbackInput(input); in != nil {
			fields := logrus.Fields{"messages": len(in.Messages)}
			if in.Config != nil {
				fields["model"] = in.Config.Model
			}
			return fields
		}
	case components.ComponentOfPrompt:
		if in := prompt.ConvCallbackInput(input); in != nil {
			return logrus.Fields{"variables": len(in.Variables)}
		}
	case components.ComponentOfLoader:
		if in := document.ConvLoaderCallbackInput(input); in != nil {
			return logrus.Fields{"source": in.Source}
		}
	case components.ComponentOfSplitter:
		if in := document.ConvSplitterCallbackInput(input); in != nil {
			return logrus.Fields{"docs": len(in.Input), "max_length": in.MaxLength, "overlap": in.Overlap}
		}
	}

	return nil
}

func outputFields(info *callbacks.RunInfo, output callbacks.CallbackOutput) logrus.Fields {
	if info == nil {
		return nil
	}

	switch info.Component {
	case components.ComponentOfChain:
		if out := chain.ConvCallbackOutput(output); out != nil && out.Generation != nil {
			return logrus.Fields{"candidates": len(out.Generation.Text)}
		}
	case components.ComponentOfChatModel:
		if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
			return logrus.Fields{
				"prompt_tokens":     out.TokenUsage.PromptTokens,
				"completion_tokens": out.TokenUsage.CompletionTokens,
				"total_tokens":      out.TokenUsage.TotalTokens,
			}
		}
	case components.ComponentOfPrompt:
		if out := prompt.ConvCallbackOutput(output); out != nil {
			return logrus.Fields{"length": len(out.Result)}
		}
	case components.ComponentOfLoader:
		if out := document.ConvLoaderCallbackOutput(output); out != nil {
			return logrus.Fields{"docs": len(out.Docs)}
		}
	case components.ComponentOfSplitter:
		if out := document.ConvSplitterCallbackOutput(output); out != nil {
			return logrus.Fields{"docs": len(out.Output)}
		}
	}

	return nil
}
