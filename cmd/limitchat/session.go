package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/favbox/limitchain/chain"
	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/memory"
	"github.com/favbox/limitchain/schema"
)

var helpLines = []string{
	"Type `:q` or `:quit` to quit",
	"Type `:h` or `:help` to see the help message",
	"Type `:c` or `:clear` to clear the memory",
	"Type `:m` or `:memory` to see the memory",
	"Type `:u` or `:undo` to undo the last turn",
}

// session 一次交互对话，与终端输入解耦。
type session struct {
	chain   chain.Chain
	backend model.Backend
	mem     memory.Memory
	opts    []chain.Option
	out     io.Writer
}

func newSession(c chain.Chain, backend model.Backend, out io.Writer, opts ...chain.Option) *session {
	return &session{
		chain:   c,
		backend: backend,
		mem:     memory.NewInMemory(),
		opts:    opts,
		out:     out,
	}
}

// handle 处理一行输入，返回 true 表示退出。
func (s *session) handle(ctx context.Context, input string) (quit bool, err error) {
	switch strings.TrimSpace(input) {
	case "":
		return false, nil
	case ":h", ":help":
		for _, l := range helpLines {
			s.println(helpStyle.Render(l))
		}
	case ":q", ":quit":
		return true, nil
	case ":c", ":clear":
		if err = s.mem.Clear(ctx); err != nil {
			return false, err
		}
		s.println(noticeStyle.Render("memory cleared"))
	case ":m", ":memory":
		history, err := s.mem.GetHistory(ctx)
		if err != nil {
			return false, err
		}
		if len(history) == 0 {
			s.println(noticeStyle.Render("memory is empty"))
		}
		for _, m := range history {
			s.println(roleStyle.Render(string(m.Role)+":") + " " + m.Content)
		}
	case ":u", ":undo":
		_, err = memory.Undo(ctx, s.mem, 2)
		if errors.Is(err, memory.ErrEmptyMemory) {
			s.println(noticeStyle.Render("nothing to undo"))
			return false, nil
		}
		if err != nil {
			return false, err
		}
		s.println(noticeStyle.Render("last turn removed"))
	default:
		return false, s.ask(ctx, strings.TrimSpace(input))
	}

	return false, nil
}

// ask 带着对话历史执行链，成功后把本轮问答追加到记忆中。
func (s *session) ask(ctx context.Context, question string) error {
	opts := append([]chain.Option{chain.WithMemory(s.mem)}, s.opts...)

	out, err := chain.Apply(ctx, s.chain, s.backend, map[string]string{chain.KeyQuestion: question}, opts...)
	if err != nil {
		return err
	}

	answer := out[chain.KeyAnswer]
	s.println(answerStyle.Render(answer.Content))

	user, err := schema.ParseMessage(fmt.Sprintf("%s: %s", schema.User, question))
	if err != nil {
		return err
	}
	if err = s.mem.PushBack(ctx, user); err != nil {
		return err
	}

	return s.mem.PushBack(ctx, answer)
}

func (s *session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}
