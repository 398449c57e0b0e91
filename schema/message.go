package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FormatType 内容模板的格式化类型。
type FormatType uint8

const (
	// FString Python 风格的字符串格式化 (PEP-3101)。
	// 由 pyfmt 库实现。
	FString FormatType = 0
	// GoTemplate Go 标准库的 text/template 格式化。
	GoTemplate FormatType = 1
	// Jinja2 Jinja2 模板格式化。
	// 由 gonja 库实现。
	Jinja2 FormatType = 2
)

// RoleType 消息角色类型。
type RoleType string

const (
	// Assistant 助手角色，表示消息由模型后端返回。
	Assistant RoleType = "assistant"
	// User 用户角色，表示消息来自用户输入。
	User RoleType = "user"
	// System 系统角色，表示消息为系统消息。
	System RoleType = "system"
)

// ErrInvalidMessage 无法解析为消息的文本。
var ErrInvalidMessage = errors.New("invalid message")

// Message 对话中的一条消息。
//
// 消息是值类型，按值比较和复制。
type Message struct {
	Role    RoleType `json:"role"`
	Content string   `json:"content"`
}

// String 返回 "role: content" 形式的文本，可由 ParseMessage 解析回来。
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// ParseMessage 解析 "role: content" 形式的文本。
//
// 以第一个 ": " 分隔角色与内容，角色不区分大小写：
//
//	msg, err := schema.ParseMessage("SYSTEM: you are a helpful assistant")
//	// msg.Role == schema.System
func ParseMessage(s string) (Message, error) {
	role, content, ok := strings.Cut(s, ": ")
	if !ok {
		return Message{}, fmt.Errorf("%w: missing role separator in %q", ErrInvalidMessage, s)
	}

	r := RoleType(strings.ToLower(strings.TrimSpace(role)))
	switch r {
	case User, Assistant, System:
	default:
		return Message{}, fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, role)
	}

	return Message{Role: r, Content: content}, nil
}

// UserMessage 创建用户消息。
func UserMessage(content string) Message {
	return Message{Role: User, Content: content}
}

// AssistantMessage 创建助手消息。
func AssistantMessage(content string) Message {
	return Message{Role: Assistant, Content: content}
}

// SystemMessage 创建系统消息。
func SystemMessage(content string) Message {
	return Message{Role: System, Content: content}
}
