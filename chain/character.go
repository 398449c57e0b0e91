package chain

import (
	"context"
	"fmt"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/schema"
)

// DefaultPersonaTemplate CharacterChain 默认的角色设定模板，使用 FString 格式。
const DefaultPersonaTemplate = `
you need to act like {bot_name}
this character has following information you MUST to take care
{bot_info}

the person you speek to is {user_name}
the person you speek to has following information 
{user_info}

`

// Character 角色设定。
type Character struct {
	UserInfo string `json:"user_info"`
	BotInfo  string `json:"bot_info"`
	BotName  string `json:"bot_name"`
	UserName string `json:"user_name"`
}

func (ch Character) vars() map[string]any {
	return map[string]any{
		"user_info": ch.UserInfo,
		"bot_info":  ch.BotInfo,
		"bot_name":  ch.BotName,
		"user_name": ch.UserName,
	}
}

// CharacterConfig CharacterChain 的配置。
type CharacterConfig struct {
	// Character 角色设定
	Character Character

	// PersonaTemplate 角色设定模板，为空时使用 DefaultPersonaTemplate
	PersonaTemplate string
	// PersonaFormat 角色设定模板的格式，默认 FString
	PersonaFormat schema.FormatType

	// PromptTemplate 完整替换默认模板，设置后忽略角色设定
	PromptTemplate *prompt.PromptTemplate
}

var _ Chain = &CharacterChain{}

// CharacterChain 在问题前加上角色设定的简单链。
type CharacterChain struct {
	character       Character
	personaTemplate string
	personaFormat   schema.FormatType
	override        *prompt.PromptTemplate

	template *prompt.PromptTemplate
}

// NewCharacterChain 创建 CharacterChain。
//
// 角色设定渲染后被转义为字面文本，再在末尾接上 {question} 变量，
// 因此设定中的花括号不会被解析为变量。
func NewCharacterChain(config *CharacterConfig) (*CharacterChain, error) {
	if config == nil {
		config = &CharacterConfig{}
	}

	c := &CharacterChain{
		character:       config.Character,
		personaTemplate: config.PersonaTemplate,
		personaFormat:   config.PersonaFormat,
		override:        config.PromptTemplate,
	}

	if c.override != nil {
		c.template = c.override
		return c, nil
	}

	persona := c.personaTemplate
	if persona == "" {
		persona = DefaultPersonaTemplate
	}

	header, err := prompt.FormatContent(persona, c.character.vars(), c.personaFormat)
	if err != nil {
		return nil, fmt.Errorf("render persona: %w", err)
	}

	tpl, err := prompt.FromString(prompt.Escape(header) + "{" + KeyQuestion + "}")
	if err != nil {
		return nil, fmt.Errorf("parse persona template: %w", err)
	}
	c.template = tpl

	return c, nil
}

// Character 返回角色设定。
func (c *CharacterChain) Character() Character {
	return c.character
}

// InputKeys 设置了替换模板时返回其全部变量，否则只有 question。
func (c *CharacterChain) InputKeys() []string {
	if c.override != nil {
		return c.override.Variables()
	}

	return []string{KeyQuestion}
}

func (c *CharacterChain) OutputKeys() []string {
	return []string{KeyAnswer}
}

func (c *CharacterChain) PromptTemplate() *prompt.PromptTemplate {
	return c.template
}

func (c *CharacterChain) PreparePrompt(inputs map[string]string) (schema.Message, error) {
	return DefaultPreparePrompt(c, inputs)
}

func (c *CharacterChain) CreateOutput(gen *schema.Generation) (map[string]schema.Message, error) {
	return DefaultCreateOutput(gen)
}

func (c *CharacterChain) Generate(ctx context.Context, backend model.Backend,
	inputs map[string]string, opts ...Option) (*schema.Generation, error) {

	return runGenerate(ctx, c, inputs, opts, func(ctx context.Context, o *Options) (*schema.Generation, error) {
		return DefaultGenerate(ctx, c, backend, inputs, o.nested()...)
	})
}

func (c *CharacterChain) GetType() string {
	return "CharacterChain"
}
