package prompt

import (
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PromptTemplate 解析后的提示词模板。
//
// textTemplate 是去掉所有变量后的文本骨架，variables 记录变量名到默认值的映射，
// 默认值为空表示必填；positions 记录每个变量在骨架中的插入偏移（字节）。
// 两张表中的变量按首次声明的顺序排列。
type PromptTemplate struct {
	textTemplate string
	variables    *orderedmap.OrderedMap[string, string]
	positions    *orderedmap.OrderedMap[string, int]
}

// parseMode 解析器状态。
type parseMode uint8

const (
	modeLiteral parseMode = iota
	modeVariable
	modeDefaultOpen
	modeDefaultValue
	modeDefaultClose
)

// FromString 解析模板文本。
//
// 语法：
//   - \X 输出字面字符 X；
//   - {name} 声明必填变量 name；
//   - {name:"default"} 声明带默认值的变量；
//   - {} 不声明任何变量。
//
// 同名变量重复声明时，后一次声明覆盖默认值和插入位置。
// 未闭合的 {、未闭合的引号、引号与 } 之间多余的字符以及末尾单独的 \ 都返回 ErrMalformedTemplate。
func FromString(text string) (*PromptTemplate, error) {
	var (
		literal   strings.Builder
		name      strings.Builder
		def       strings.Builder
		mode      = modeLiteral
		escape    bool
		variables = orderedmap.New[string, string]()
		positions = orderedmap.New[string, int]()
		start     int
	)

	declare := func() {
		if name.Len() > 0 {
			variables.Set(name.String(), def.String())
			positions.Set(name.String(), literal.Len())
		}
		name.Reset()
		def.Reset()
		mode = modeLiteral
	}

	for i, c := range text {
		if escape {
			escape = false
			switch mode {
			case modeLiteral:
				literal.WriteRune(c)
			case modeVariable:
				name.WriteRune(c)
			case modeDefaultValue:
				def.WriteRune(c)
			default:
				return nil, malformed(i, "escape outside of quoted default")
			}
			continue
		}

		if c == '\\' {
			escape = true
			continue
		}

		switch mode {
		case modeLiteral:
			if c == '{' {
				mode = modeVariable
				start = i
			} else {
				literal.WriteRune(c)
			}
		case modeVariable:
			switch c {
			case '}':
				declare()
			case ':':
				mode = modeDefaultOpen
			case '{':
				return nil, malformed(i, "nested '{' in variable opened at %d", start)
			default:
				name.WriteRune(c)
			}
		case modeDefaultOpen:
			switch {
			case c == '"':
				mode = modeDefaultValue
			case c == '}':
				declare()
			case isSpace(c):
			default:
				return nil, malformed(i, "expect '\"' after ':' in variable opened at %d", start)
			}
		case modeDefaultValue:
			if c == '"' {
				mode = modeDefaultClose
			} else {
				def.WriteRune(c)
			}
		case modeDefaultClose:
			switch {
			case c == '}':
				declare()
			case isSpace(c):
			default:
				return nil, malformed(i, "expect '}' after default value of variable opened at %d", start)
			}
		}
	}

	if escape {
		return nil, malformed(len(text), "trailing escape")
	}
	if mode != modeLiteral {
		return nil, malformed(len(text), "unterminated variable opened at %d", start)
	}

	return &PromptTemplate{
		textTemplate: literal.String(),
		variables:    variables,
		positions:    positions,
	}, nil
}

// MustFromString 与 FromString 相同，解析失败时 panic，用于包级默认模板。
func MustFromString(text string) *PromptTemplate {
	t, err := FromString(text)
	if err != nil {
		panic(err)
	}

	return t
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t'
}

// Format 使用给定的值填充模板。
//
// 必填变量缺失时返回 *MissingVariableError；带默认值的变量可以被覆盖。
// 输入中多余的键被忽略。
func (t *PromptTemplate) Format(values map[string]string) (string, error) {
	type insertion struct {
		offset int
		order  int
		value  string
	}

	inserts := make([]insertion, 0, t.variables.Len())
	order := 0
	for pair := t.variables.Oldest(); pair != nil; pair = pair.Next() {
		v, ok := values[pair.Key]
		if !ok {
			if pair.Value == "" {
				return "", &MissingVariableError{Key: pair.Key}
			}
			v = pair.Value
		}

		offset, _ := t.positions.Get(pair.Key)
		inserts = append(inserts, insertion{offset: offset, order: order, value: v})
		order++
	}

	// 按偏移从大到小插入，同一偏移先插入后声明的变量，
	// 等价于按偏移从小到大顺序拼接，同一偏移先声明的在前。
	sort.SliceStable(inserts, func(i, j int) bool {
		if inserts[i].offset != inserts[j].offset {
			return inserts[i].offset < inserts[j].offset
		}
		return inserts[i].order < inserts[j].order
	})

	var sb strings.Builder
	size := len(t.textTemplate)
	for _, ins := range inserts {
		size += len(ins.value)
	}
	sb.Grow(size)

	prev := 0
	for _, ins := range inserts {
		sb.WriteString(t.textTemplate[prev:ins.offset])
		sb.WriteString(ins.value)
		prev = ins.offset
	}
	sb.WriteString(t.textTemplate[prev:])

	return sb.String(), nil
}

// TextTemplate 返回去掉变量后的文本骨架。
func (t *PromptTemplate) TextTemplate() string {
	return t.textTemplate
}

// Variables 按声明顺序返回全部变量名。
func (t *PromptTemplate) Variables() []string {
	keys := make([]string, 0, t.variables.Len())
	for pair := t.variables.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// RequiredVariables 按声明顺序返回没有默认值的变量名。
func (t *PromptTemplate) RequiredVariables() []string {
	var keys []string
	for pair := t.variables.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == "" {
			keys = append(keys, pair.Key)
		}
	}

	return keys
}

// Default 返回变量的默认值，变量未声明时 ok 为 false。
func (t *PromptTemplate) Default(name string) (def string, ok bool) {
	return t.variables.Get(name)
}

// InsertPosition 返回变量在文本骨架中的插入偏移。
func (t *PromptTemplate) InsertPosition(name string) (offset int, ok bool) {
	return t.positions.Get(name)
}

// Equal 判断两个模板在结构上是否相同，包括变量的声明顺序。
func (t *PromptTemplate) Equal(other *PromptTemplate) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.textTemplate != other.textTemplate || t.variables.Len() != other.variables.Len() {
		return false
	}

	a, b := t.variables.Oldest(), other.variables.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || a.Value != b.Value {
			return false
		}
		pa, _ := t.positions.Get(a.Key)
		pb, _ := other.positions.Get(b.Key)
		if pa != pb {
			return false
		}
	}

	return a == nil && b == nil
}

// String 返回模板的文本骨架。
func (t *PromptTemplate) String() string {
	return t.textTemplate
}

// Escape 转义文本中的 \、{ 和 }，使其可以作为字面量嵌入模板源文本。
func Escape(text string) string {
	if !strings.ContainsAny(text, `\{}`) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + 8)
	for _, c := range text {
		if c == '\\' || c == '{' || c == '}' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}

	return sb.String()
}
