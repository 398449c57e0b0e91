// Package markdown 提供 Markdown 文档加载器，每个标题小节加载为一个文档。
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/document"
	"github.com/favbox/limitchain/internal/gmap"
	"github.com/favbox/limitchain/schema"
)

const (
	// MetaKeyHeading 小节标题，第一个标题之前的内容为空字符串
	MetaKeyHeading = "heading"
	// MetaKeyLevel 小节标题级别，第一个标题之前的内容为 0
	MetaKeyLevel = "level"
)

// Config Markdown 加载器的配置。
type Config struct {
	// Parser 自定义的 goldmark 解析器，为空时使用 goldmark.New()
	Parser goldmark.Markdown
}

// Loader Markdown 加载器。
//
// 只有文档顶层的标题划分小节，引用块、列表与代码块中的 # 不作为标题。
type Loader struct {
	md goldmark.Markdown
}

var _ document.Loader = &Loader{}

// NewLoader 创建 Markdown 加载器，config 可以为空。
func NewLoader(_ context.Context, config *Config) (*Loader, error) {
	if config == nil {
		config = &Config{}
	}

	md := config.Parser
	if md == nil {
		md = goldmark.New()
	}

	return &Loader{md: md}, nil
}

// GetType 返回加载器类型。
func (l *Loader) GetType() string {
	return "Markdown"
}

// LoadFromMemory 把 Markdown 文本按标题小节加载为文档。
func (l *Loader) LoadFromMemory(ctx context.Context, text string, opts ...document.LoaderOption) ([]*schema.Document, error) {
	return l.load(ctx, "", opts, func() ([]byte, error) {
		return []byte(text), nil
	})
}

// LoadFromPath 读取 Markdown 文件并按标题小节加载为文档。
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

	src, err := read()
	if err != nil {
		return nil, fmt.Errorf("load markdown %q: %w", source, err)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("load markdown %q: %w", source, document.ErrInvalidUTF8)
	}

	for _, sec := range l.sections(src) {
		meta := gmap.Concat(o.ExtraMeta)
		meta[MetaKeyHeading] = sec.heading
		meta[MetaKeyLevel] = sec.level

		doc := &schema.Document{
			ID:       o.IDGenerator(ctx),
			Content:  sec.content,
			MetaData: meta,
		}
		docs = append(docs, doc.WithSource(source))
	}

	_ = callbacks.OnEnd(ctx, &document.LoaderCallbackOutput{Source: source, Docs: docs})

	return docs, nil
}

type section struct {
	heading string
	level   int
	content string
}

// sections 按顶层标题切分，空白小节被丢弃。
func (l *Loader) sections(src []byte) []section {
	root := l.md.Parser().Parse(gmtext.NewReader(src))

	var (
		out   []section
		cur   = section{}
		start = 0
	)

	emit := func(end int) {
		cur.content = strings.TrimSpace(string(src[start:end]))
		if cur.content != "" {
			out = append(out, cur)
		}
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}

		pos := lineStart(src, h.Lines().At(0).Start)
		emit(pos)

		cur = section{heading: headingText(h, src), level: h.Level}
		start = pos
	}
	emit(len(src))

	return out
}

func headingText(h *ast.Heading, src []byte) string {
	lines := h.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, string(bytes.TrimSpace(seg.Value(src))))
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

// lineStart 返回 pos 所在行的起始偏移。
func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}
