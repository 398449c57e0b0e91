package recursive

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/favbox/limitchain/callbacks"
	"github.com/favbox/limitchain/components"
	"github.com/favbox/limitchain/components/document"
	"github.com/favbox/limitchain/internal/gmap"
	"github.com/favbox/limitchain/schema"
)

var (
	// DefaultSeparators 通用文本的默认分隔符：空行、换行、句号与空格。
	DefaultSeparators = []string{"\n\n", "\n", ".", "。", " "}

	// MarkdownSeparators Markdown 文本的默认分隔符。
	MarkdownSeparators = []string{"#", "```", ">", "---", "===", "\n\n"}
)

// Config 递归切分器的配置。
type Config struct {
	// Separators 分隔符，从粗到细排列，为空时使用 DefaultSeparators
	Separators []string

	// Type 回调中展示的切分器类型，为空时为 "Recursive"
	Type string
}

// Splitter 递归字符切分器，可以被多个 goroutine 同时使用。
type Splitter struct {
	separators []string
	typ        string
}

var _ document.Splitter = &Splitter{}

// NewSplitter 创建递归切分器，config 为空时使用默认配置。
func NewSplitter(_ context.Context, config *Config) (*Splitter, error) {
	if config == nil {
		config = &Config{}
	}

	seps := config.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	for i, sep := range seps {
		if sep == "" {
			return nil, fmt.Errorf("recursive splitter: separator %d is empty", i)
		}
	}

	typ := config.Type
	if typ == "" {
		typ = "Recursive"
	}

	return &Splitter{
		separators: append([]string(nil), seps...),
		typ:        typ,
	}, nil
}

// NewMarkdownSplitter 创建使用 MarkdownSeparators 的切分器。
func NewMarkdownSplitter(ctx context.Context) (*Splitter, error) {
	return NewSplitter(ctx, &Config{
		Separators: MarkdownSeparators,
		Type:       "Markdown",
	})
}

// GetType 返回切分器类型。
func (s *Splitter) GetType() string {
	return s.typ
}

// Split 把文本切分为长度不超过 maxLength 的片段。
//
// maxLength <= 0 或 overlap >= maxLength 时 panic。
func (s *Splitter) Split(text string, maxLength, overlap int) ([]string, error) {
	mustValidBounds(maxLength, overlap)

	return splitText(text, s.separators, maxLength, overlap), nil
}

// SplitDocuments 合并相邻的短文档，再切分仍然过长的文档。
//
// 合并后的文档长度（以 "\n" 连接）不超过 maxLength+overlap，
// 合并文档获得新的 ID，元数据 merge 记录来源文档 ID，来源元数据先写者优先。
// 切分出的片段继承元数据，并记录来源文档 ID 和片段序号。
func (s *Splitter) SplitDocuments(ctx context.Context, docs []*schema.Document, maxLength, overlap int,
	opts ...document.SplitterOption) (out []*schema.Document, err error) {

	mustValidBounds(maxLength, overlap)

	o := document.GetSplitterCommonOptions(nil, opts...)

	ctx = callbacks.EnsureRunInfo(ctx, s.GetType(), components.ComponentOfSplitter)
	ctx = callbacks.OnStart(ctx, &document.SplitterCallbackInput{
		Input:     docs,
		MaxLength: maxLength,
		Overlap:   overlap,
	})

	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	merged := mergeDocuments(ctx, docs, maxLength+overlap, o.IDGenerator)

	out = make([]*schema.Document, 0, len(merged))
	for _, doc := range merged {
		if runeLen(doc.Content) <= maxLength {
			out = append(out, doc)
			continue
		}

		parts, err := s.Split(doc.Content, maxLength, overlap)
		if err != nil {
			return nil, fmt.Errorf("split document %s: %w", doc.ID, err)
		}

		for i, part := range parts {
			chunk := &schema.Document{
				ID:       o.IDGenerator(ctx),
				Content:  part,
				MetaData: gmap.Concat(doc.MetaData),
			}
			out = append(out, chunk.WithChunkOf(doc.ID, i))
		}
	}

	_ = callbacks.OnEnd(ctx, &document.SplitterCallbackOutput{Output: out})

	return out, nil
}

func mustValidBounds(maxLength, overlap int) {
	if maxLength <= 0 {
		panic(fmt.Sprintf("recursive splitter: maxLength must be positive, got %d", maxLength))
	}
	if overlap < 0 || overlap >= maxLength {
		panic(fmt.Sprintf("recursive splitter: overlap must be in [0, %d), got %d", maxLength, overlap))
	}
}

// splitText 取 seps 中最细的分隔符切分文本，过长的片段用其余分隔符递归切分。
func splitText(text string, seps []string, maxLength, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runeLen(text) <= maxLength {
		return []string{text}
	}
	if len(seps) == 0 {
		return splitFixed(text, maxLength, overlap)
	}

	sep, rest := seps[len(seps)-1], seps[:len(seps)-1]

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if bufLen > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	sepLen := runeLen(sep)
	for _, seg := range strings.Split(text, sep) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		segLen := runeLen(seg)
		if segLen > maxLength {
			flush()
			chunks = append(chunks, splitText(seg, rest, maxLength, overlap)...)
			continue
		}

		if bufLen > 0 && bufLen+sepLen+segLen > maxLength {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString(sep)
			bufLen += sepLen
		}
		buf.WriteString(seg)
		bufLen += segLen
	}
	flush()

	return chunks
}

// splitFixed 按固定宽度的窗口切分，窗口每次前进 maxLength-overlap，最后不足一个窗口的部分单独输出。
func splitFixed(text string, maxLength, overlap int) []string {
	runes := []rune(text)
	step := maxLength - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+maxLength, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// mergeDocuments 把相邻文档合并到 limit 以内，只有一个来源的分组原样保留。
func mergeDocuments(ctx context.Context, docs []*schema.Document, limit int,
	gen document.IDGenerator) []*schema.Document {

	var (
		out      []*schema.Document
		group    []*schema.Document
		groupLen int
	)

	flush := func() {
		switch len(group) {
		case 0:
		case 1:
			out = append(out, group[0])
		default:
			out = append(out, mergeGroup(ctx, group, gen))
		}
		group, groupLen = nil, 0
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}

		l := runeLen(doc.Content)
		if len(group) > 0 && groupLen+1+l > limit {
			flush()
		}
		if len(group) > 0 {
			groupLen++
		}
		group = append(group, doc)
		groupLen += l
	}
	flush()

	return out
}

func mergeGroup(ctx context.Context, group []*schema.Document, gen document.IDGenerator) *schema.Document {
	var (
		contents = make([]string, 0, len(group))
		ids      = make([]string, 0, len(group))
		meta     = make(map[string]any)
	)

	for _, doc := range group {
		contents = append(contents, doc.Content)
		ids = append(ids, doc.ID)
		gmap.MergeAbsent(meta, doc.MetaData)
	}

	merged := &schema.Document{
		ID:       gen(ctx),
		Content:  strings.Join(contents, "\n"),
		MetaData: meta,
	}

	return merged.WithMergedFrom(ids)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
