package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/limitchain/schema"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("双端操作", func(t *testing.T) {
		m := NewInMemory(schema.UserMessage("b"))

		require.NoError(t, m.PushFront(ctx, schema.SystemMessage("a")))
		require.NoError(t, m.PushBack(ctx, schema.AssistantMessage("c")))

		h, err := m.GetHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []schema.Message{
			schema.SystemMessage("a"),
			schema.UserMessage("b"),
			schema.AssistantMessage("c"),
		}, h)

		front, err := m.PopFront(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", front.Content)

		back, err := m.PopBack(ctx)
		require.NoError(t, err)
		assert.Equal(t, "c", back.Content)

		n, _ := m.Len(ctx)
		assert.Equal(t, 1, n)
	})

	t.Run("空历史弹出", func(t *testing.T) {
		m := NewInMemory()

		_, err := m.PopBack(ctx)
		assert.ErrorIs(t, err, ErrEmptyMemory)
		_, err = m.PopFront(ctx)
		assert.ErrorIs(t, err, ErrEmptyMemory)
	})

	t.Run("快照与历史相互独立", func(t *testing.T) {
		m := NewInMemory(schema.UserMessage("x"))

		h, _ := m.GetHistory(ctx)
		h[0].Content = "changed"

		again, _ := m.GetHistory(ctx)
		assert.Equal(t, "x", again[0].Content)
	})

	t.Run("清空", func(t *testing.T) {
		m := NewInMemory(schema.UserMessage("x"), schema.UserMessage("y"))
		require.NoError(t, m.Clear(ctx))

		h, _ := m.GetHistory(ctx)
		assert.Empty(t, h)
	})

	t.Run("零值可用", func(t *testing.T) {
		var m InMemory
		require.NoError(t, m.PushBack(ctx, schema.UserMessage("x")))
		n, _ := m.Len(ctx)
		assert.Equal(t, 1, n)
	})

	t.Run("并发写入", func(t *testing.T) {
		m := NewInMemory()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = m.PushBack(ctx, schema.UserMessage(fmt.Sprint(i)))
				_, _ = m.GetHistory(ctx)
			}(i)
		}
		wg.Wait()

		n, _ := m.Len(ctx)
		assert.Equal(t, 50, n)
	})
}

func TestUndo(t *testing.T) {
	ctx := context.Background()

	m := NewInMemory(
		schema.UserMessage("q1"), schema.AssistantMessage("a1"),
		schema.UserMessage("q2"), schema.AssistantMessage("a2"),
	)

	popped, err := Undo(ctx, m, 2)
	require.NoError(t, err)
	assert.Equal(t, []schema.Message{schema.AssistantMessage("a2"), schema.UserMessage("q2")}, popped)

	_, err = Undo(ctx, m, 3)
	assert.ErrorIs(t, err, ErrEmptyMemory)

	// 历史不足时不弹出任何消息
	n, _ := m.Len(ctx)
	assert.Equal(t, 2, n)
}
