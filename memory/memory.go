// Package memory 提供对话历史的存储接口与内存实现。
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	list "github.com/bahlo/generic-list-go"

	"github.com/favbox/limitchain/schema"
)

// ErrEmptyMemory 在空的对话历史上弹出消息。
var ErrEmptyMemory = errors.New("memory is empty")

// Memory 对话历史，按顺序保存消息的双端队列。
//
// 实现必须是并发安全的，GetHistory 返回调用时刻的完整快照。
type Memory interface {
	PushFront(ctx context.Context, msg schema.Message) error
	PushBack(ctx context.Context, msg schema.Message) error
	PopFront(ctx context.Context) (schema.Message, error)
	PopBack(ctx context.Context) (schema.Message, error)
	GetHistory(ctx context.Context) ([]schema.Message, error)
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

var _ Memory = &InMemory{}

// InMemory 进程内的对话历史，所有操作由同一把互斥锁串行化。
type InMemory struct {
	mu      sync.Mutex
	history *list.List[schema.Message]
}

// NewInMemory 创建对话历史，可选地以 seed 中的消息按顺序初始化。
func NewInMemory(seed ...schema.Message) *InMemory {
	m := &InMemory{history: list.New[schema.Message]()}
	for _, msg := range seed {
		m.history.PushBack(msg)
	}

	return m
}

func (m *InMemory) PushFront(_ context.Context, msg schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lazyInit().PushFront(msg)
	return nil
}

func (m *InMemory) PushBack(_ context.Context, msg schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lazyInit().PushBack(msg)
	return nil
}

func (m *InMemory) PopFront(_ context.Context) (schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lazyInit().Front()
	if e == nil {
		return schema.Message{}, ErrEmptyMemory
	}

	return m.history.Remove(e), nil
}

func (m *InMemory) PopBack(_ context.Context) (schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lazyInit().Back()
	if e == nil {
		return schema.Message{}, ErrEmptyMemory
	}

	return m.history.Remove(e), nil
}

// GetHistory 返回历史消息的副本，修改返回值不影响对话历史。
func (m *InMemory) GetHistory(_ context.Context) ([]schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.lazyInit()
	out := make([]schema.Message, 0, h.Len())
	for e := h.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value)
	}

	return out, nil
}

func (m *InMemory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lazyInit().Init()
	return nil
}

func (m *InMemory) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lazyInit().Len(), nil
}

// lazyInit 使零值 InMemory 可以直接使用，调用方需持有锁。
func (m *InMemory) lazyInit() *list.List[schema.Message] {
	if m.history == nil {
		m.history = list.New[schema.Message]()
	}

	return m.history
}

// Undo 从尾部弹出 n 条消息，按弹出顺序返回。
//
// 历史不足 n 条时不弹出任何消息，返回包装了 ErrEmptyMemory 的错误。
// 检查与弹出之间 m 可能被其他协程修改，调用方需要自行保证独占。
func Undo(ctx context.Context, m Memory, n int) ([]schema.Message, error) {
	size, err := m.Len(ctx)
	if err != nil {
		return nil, err
	}
	if size < n {
		return nil, fmt.Errorf("undo %d messages with %d in history: %w", n, size, ErrEmptyMemory)
	}

	popped := make([]schema.Message, 0, n)
	for i := 0; i < n; i++ {
		msg, err := m.PopBack(ctx)
		if err != nil {
			return popped, err
		}
		popped = append(popped, msg)
	}

	return popped, nil
}
