package schema

import "errors"

// ErrEmptyGeneration 模型后端没有返回任何候选。
var ErrEmptyGeneration = errors.New("generation has no candidates")

// Generation 一次模型调用的结果。
type Generation struct {
	// Text 候选回复，Text[0] 为规范结果，链只读取第一个候选
	Text []Message `json:"text"`
	// Info 后端返回的附加信息，例如 token 用量，nil 表示没有
	Info map[string]string `json:"info,omitempty"`
}

// First 返回第一个候选。
func (g *Generation) First() (Message, error) {
	if g == nil || len(g.Text) == 0 {
		return Message{}, ErrEmptyGeneration
	}

	return g.Text[0], nil
}
