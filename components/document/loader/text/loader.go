// Package text 提供纯文本文档加载器，整段文本加载为一个文档。
package text

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/document"
	"github.com/favbox/limitchain/internal/gmap"
	"github.com/favbox/limitchain/schema"
)

// Config 纯文本加载器的配置。
type Config struct {
	// Meta 写入每个文档的固定元数据
	Meta map[string]any
}

// Loader 纯文本加载器。
type Loader struct {
	meta map[string]any
}

var _ document.Loader = &Loader{}

// NewLoader 创建纯文本加载器，config 可以为空。
func NewLoader(_ context.Context, config *Config) (*Loader, error) {
	if config == nil {
		config = &Config{}
	}

	return &Loader{meta: config.Meta}, nil
}

// GetType 返回加载器类型。
func (l *Loader) GetType() string {
	return "Text"
}

// LoadFromMemory 把文本加载为一个文档。
func (l *Loader) LoadFromMemory(ctx context.Context, text string, opts ...document.LoaderOption) ([]*schema.Document, error) {
	return l.load(ctx, "", opts, func() ([]byte, error) {
		return []byte(text), nil
	})
}

// LoadFromPath 读取文件并加载为一个文档。
func (l *Loader) LoadFromPath(ctx context.Context, path string, opts ...document.LoaderOption) ([]*schema.Document, error) {
	return l.load(ctx, path, opts, func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

func (l *Loader) load(ctx context.Context, source string, opts []document.LoaderOption,
	read func() ([]byte, error)) (docs []*schema.Document, err error) {

	o := document.GetLoaderCommonOptions(nil, opts...)

	ctx = callbacks.EnsureRunInfo(ctx, l.GetType(), components.ComponentOfLoader)
	ctx = callbacks.OnStart(ctx, &document.LoaderCallbackInput{Source: source})

	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	data, err := read()
	if err != nil {
		return nil, fmt.Errorf("load text %q: %w", source, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("load text %q: %w", source, document.ErrInvalidUTF8)
	}

	doc := &schema.Document{
		ID:       o.IDGenerator(ctx),
		Content:  string(data),
		MetaData: gmap.Concat(o.ExtraMeta, l.meta),
	}
	docs = []*schema.Document{doc.WithSource(source)}

	_ = callbacks.OnEnd(ctx, &document.LoaderCallbackOutput{Source: source, Docs: docs})

	return docs, nil
}
