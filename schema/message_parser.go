package schema

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrNoMatch 正则解析器没有匹配到输入。
var ErrNoMatch = errors.New("no match")

// MessageParser 消息解析器接口，将消息解析为指定类型对象。
type MessageParser[T any] interface {
	Parse(ctx context.Context, m Message) (T, error)
}

// MessageJSONParseConfig JSON 消息解析配置。
type MessageJSONParseConfig struct {
	// ParseKeyPath JSON 字段路径，支持嵌套字段提取，如 "field.sub_field"。
	ParseKeyPath string `json:"parse_key_path,omitempty"`
}

// NewMessageJSONParser 创建一个新的 MessageJSONParser。
func NewMessageJSONParser[T any](config *MessageJSONParseConfig) MessageParser[T] {
	if config == nil {
		config = &MessageJSONParseConfig{}
	}

	return &MessageJSONParser[T]{
		ParseKeyPath: config.ParseKeyPath,
	}
}

// MessageJSONParser JSON 消息解析器，将消息内容反序列化为指定类型对象。
type MessageJSONParser[T any] struct {
	ParseKeyPath string // JSON 字段路径
}

// Parse 将消息内容解析为指定类型对象。
func (p *MessageJSONParser[T]) Parse(_ context.Context, m Message) (parsed T, err error) {
	data, err := p.extractData(strings.TrimSpace(m.Content))
	if err != nil {
		return parsed, err
	}

	if err := sonic.UnmarshalString(data, &parsed); err != nil {
		return parsed, fmt.Errorf("unmarshal message content: %w", err)
	}

	return parsed, nil
}

// extractData 根据配置的路径从 JSON 中提取目标字段。
func (p *MessageJSONParser[T]) extractData(data string) (string, error) {
	if p.ParseKeyPath == "" {
		return data, nil
	}

	keys := strings.Split(p.ParseKeyPath, ".")
	path := make([]any, len(keys))
	for i, key := range keys {
		path[i] = key
	}

	node, err := sonic.GetFromString(data, path...)
	if err != nil {
		return "", fmt.Errorf("get json path %q: %w", p.ParseKeyPath, err)
	}

	bytes, err := node.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal json node %q: %w", p.ParseKeyPath, err)
	}

	return string(bytes), nil
}

// MessageRegexParser 正则消息解析器，从消息内容中提取捕获组。
//
// TakingIndex 非空时按序号取捕获组，否则按 TakingGroup 中的组名取。
type MessageRegexParser struct {
	Regex       string   `json:"regex"`
	TakingIndex []int    `json:"taking_index,omitempty"`
	TakingGroup []string `json:"taking_group,omitempty"`

	re *regexp.Regexp
}

// NewMessageRegexParser 编译正则并创建解析器。
func NewMessageRegexParser(expr string, takingIndex []int, takingGroup []string) (*MessageRegexParser, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	return &MessageRegexParser{
		Regex:       expr,
		TakingIndex: takingIndex,
		TakingGroup: takingGroup,
		re:          re,
	}, nil
}

var _ MessageParser[[]string] = &MessageRegexParser{}

// Parse 返回第一个匹配中被选取的捕获组，任一捕获组缺失时返回 ErrNoMatch。
func (p *MessageRegexParser) Parse(_ context.Context, m Message) ([]string, error) {
	re := p.re
	if re == nil {
		var err error
		if re, err = regexp.Compile(p.Regex); err != nil {
			return nil, fmt.Errorf("compile regex: %w", err)
		}
	}

	idx := re.FindStringSubmatchIndex(m.Content)
	if idx == nil {
		return nil, ErrNoMatch
	}

	group := func(i int) (string, error) {
		if i < 0 || 2*i+1 >= len(idx) || idx[2*i] < 0 {
			return "", fmt.Errorf("%w: group %d", ErrNoMatch, i)
		}
		return m.Content[idx[2*i]:idx[2*i+1]], nil
	}

	result := make([]string, 0, len(p.TakingIndex)+len(p.TakingGroup))
	if len(p.TakingIndex) > 0 {
		for _, i := range p.TakingIndex {
			s, err := group(i)
			if err != nil {
				return nil, err
			}
			result = append(result, s)
		}
		return result, nil
	}

	for _, name := range p.TakingGroup {
		i := re.SubexpIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: group %q", ErrNoMatch, name)
		}
		s, err := group(i)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, nil
}
