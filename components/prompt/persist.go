package prompt

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// templateJSON 模板的持久化格式。
type templateJSON struct {
	TextTemplate string                                 `json:"text_template"`
	Variables    *orderedmap.OrderedMap[string, string] `json:"variables"`
	Positions    *orderedmap.OrderedMap[string, int]    `json:"variables_insert_positions"`
}

// MarshalJSON 实现 json.Marshaler 接口，变量保持声明顺序。
func (t *PromptTemplate) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(&templateJSON{
		TextTemplate: t.textTemplate,
		Variables:    t.variables,
		Positions:    t.positions,
	})
}

// UnmarshalJSON 实现 json.Unmarshaler 接口。
//
// 数据不满足模板不变量时返回 ErrMalformedTemplate：
// 每个变量恰有一个插入位置，偏移位于 [0, len(text_template)] 且落在字符边界上。
func (t *PromptTemplate) UnmarshalJSON(data []byte) error {
	var raw templateJSON
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	if raw.Variables == nil {
		raw.Variables = orderedmap.New[string, string]()
	}
	if raw.Positions == nil {
		raw.Positions = orderedmap.New[string, int]()
	}

	if raw.Variables.Len() != raw.Positions.Len() {
		return fmt.Errorf("%w: %d variables but %d insert positions",
			ErrMalformedTemplate, raw.Variables.Len(), raw.Positions.Len())
	}

	for pair := raw.Variables.Oldest(); pair != nil; pair = pair.Next() {
		offset, ok := raw.Positions.Get(pair.Key)
		if !ok {
			return fmt.Errorf("%w: variable %q has no insert position", ErrMalformedTemplate, pair.Key)
		}
		if offset < 0 || offset > len(raw.TextTemplate) {
			return fmt.Errorf("%w: insert position %d of %q out of range", ErrMalformedTemplate, offset, pair.Key)
		}
		if offset < len(raw.TextTemplate) && !utf8.RuneStart(raw.TextTemplate[offset]) {
			return fmt.Errorf("%w: insert position %d of %q splits a character", ErrMalformedTemplate, offset, pair.Key)
		}
	}

	t.textTemplate = raw.TextTemplate
	t.variables = raw.Variables
	t.positions = raw.Positions

	return nil
}

// Save 将模板以 JSON 格式写入文件。
func (t *PromptTemplate) Save(path string) error {
	data, err := t.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal prompt template: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save prompt template: %w", err)
	}

	return nil
}

// Load 从文件加载模板。
func Load(path string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}

	t := &PromptTemplate{}
	if err := t.UnmarshalJSON(data); err != nil {
		return nil, err
	}

	return t, nil
}
