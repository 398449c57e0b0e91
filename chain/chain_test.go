package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/components/prompt"
	mockModel "github.com/favbox/limitchain/internal/mock/components/model"
	"github.com/favbox/limitchain/memory"
	"github.com/favbox/limitchain/schema"
)

// backendFunc 用函数实现 model.Backend，便于在测试中模拟延迟与并发。
type backendFunc func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error)

func (f backendFunc) Generate(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
	return f(ctx, msgs, opts...)
}

func reply(content string) *schema.Generation {
	return &schema.Generation{Text: []schema.Message{schema.AssistantMessage(content)}}
}

func TestLLMChain(t *testing.T) {
	ctx := context.Background()

	t.Run("拼接对话历史并透传停止词", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		mem := memory.NewInMemory(schema.UserMessage("hi"), schema.AssistantMessage("hello"))
		c := NewLLMChain(prompt.MustFromString(`Hi {name:"friend"}, answer: {question}`))

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
				assert.Equal(t, []schema.Message{
					schema.UserMessage("hi"),
					schema.AssistantMessage("hello"),
					schema.UserMessage("Hi friend, answer: 2+2?"),
				}, msgs)

				o := model.GetCommonOptions(nil, opts...)
				assert.Equal(t, []string{"stop"}, o.Stop)
				require.NotNil(t, o.Temperature)
				assert.Equal(t, float32(0.1), *o.Temperature)

				return reply("4"), nil
			}).Times(1)

		out, err := Apply(ctx, c, backend, map[string]string{"question": "2+2?"},
			WithMemory(mem),
			WithStop("stop"),
			WithModelOptions(model.WithTemperature(0.1)),
		)
		require.NoError(t, err)
		assert.Equal(t, map[string]schema.Message{KeyAnswer: schema.AssistantMessage("4")}, out)

		// 链本身不写入对话历史
		n, _ := mem.Len(ctx)
		assert.Equal(t, 2, n)
	})

	t.Run("默认模板", func(t *testing.T) {
		c := NewLLMChain(nil)
		assert.Equal(t, []string{KeyQuestion}, c.InputKeys())
		assert.Equal(t, []string{KeyAnswer}, c.OutputKeys())

		msg, err := c.PreparePrompt(map[string]string{"question": "why?"})
		require.NoError(t, err)
		assert.Equal(t, schema.UserMessage("why?"), msg)
	})

	t.Run("缺少必填变量时不调用模型", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		_, err := Apply(ctx, NewLLMChain(nil), backend, map[string]string{})
		assert.ErrorIs(t, err, prompt.ErrMissingVariable)
	})

	t.Run("模型错误向上传递", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)
		boom := errors.New("boom")

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

		out, err := Predict(ctx, NewLLMChain(nil), backend, map[string]string{"question": "q"})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, out)
		assert.Contains(t, err.Error(), "LLMChain")
	})

	t.Run("模型没有返回候选", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(&schema.Generation{}, nil)

		_, err := Apply(ctx, NewLLMChain(nil), backend, map[string]string{"question": "q"})
		assert.ErrorIs(t, err, schema.ErrEmptyGeneration)
	})
}

func TestCharacterChain(t *testing.T) {
	ctx := context.Background()

	character := Character{
		UserInfo: "likes {games}",
		BotInfo:  "a cute maid",
		BotName:  "Ashly",
		UserName: "lemon",
	}

	t.Run("默认角色模板", func(t *testing.T) {
		c, err := NewCharacterChain(&CharacterConfig{Character: character})
		require.NoError(t, err)

		assert.Equal(t, []string{KeyQuestion}, c.InputKeys())
		assert.Equal(t, []string{KeyQuestion}, c.PromptTemplate().Variables())

		msg, err := c.PreparePrompt(map[string]string{"question": "who are you?"})
		require.NoError(t, err)
		assert.Equal(t, schema.User, msg.Role)
		assert.True(t, strings.HasPrefix(msg.Content, "\nyou need to act like Ashly\n"))
		assert.Contains(t, msg.Content, "the person you speek to is lemon\n")
		assert.Contains(t, msg.Content, "likes {games}\n")
		assert.True(t, strings.HasSuffix(msg.Content, "\n\nwho are you?"))
	})

	t.Run("拼接对话历史", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mockModel.NewMockBackend(ctrl)
		mem := memory.NewInMemory(schema.UserMessage("earlier"))

		c, err := NewCharacterChain(&CharacterConfig{Character: character})
		require.NoError(t, err)

		backend.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msgs []schema.Message, opts ...model.Option) (*schema.Generation, error) {
				require.Len(t, msgs, 2)
				assert.Equal(t, "earlier", msgs[0].Content)
				return reply("nya"), nil
			})

		out, err := Apply(ctx, c, backend, map[string]string{"question": "hi"}, WithMemory(mem))
		require.NoError(t, err)
		assert.Equal(t, "nya", out[KeyAnswer].Content)
	})

	t.Run("自定义角色模板格式", func(t *testing.T) {
		c, err := NewCharacterChain(&CharacterConfig{
			Character:       character,
			PersonaTemplate: "I am {{ bot_name }}. ",
			PersonaFormat:   schema.Jinja2,
		})
		require.NoError(t, err)

		msg, err := c.PreparePrompt(map[string]string{"question": "q"})
		require.NoError(t, err)
		assert.Equal(t, "I am Ashly. q", msg.Content)
	})

	t.Run("替换模板", func(t *testing.T) {
		c, err := NewCharacterChain(&CharacterConfig{
			Character:      character,
			PromptTemplate: prompt.MustFromString("{topic}: {question}"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"topic", "question"}, c.InputKeys())
	})

	t.Run("角色模板渲染失败", func(t *testing.T) {
		_, err := NewCharacterChain(&CharacterConfig{
			Character:       character,
			PersonaTemplate: "{{ .missing }}",
			PersonaFormat:   schema.GoTemplate,
		})
		assert.Error(t, err)
	})
}
