package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/favbox/limitchain/backend/openai"
	"github.com/favbox/limitchain/backend/ratelimit"
	"github.com/favbox/limitchain/callbacks/logging"
	"github.com/favbox/limitchain/chain"
	"github.com/favbox/limitchain/components/model"
)

type rootFlags struct {
	config  string
	model   string
	persona string
	debug   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "limitchat",
		Short: "Interactive chat backed by limitchain",
		Long: `limitchat keeps a conversation history in memory and sends every
question through an LLM chain, or a character chain when a persona is configured.

Type :help inside the chat to list the available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "config.yaml", "Path to the YAML config file")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Override backend.model from the config")
	cmd.Flags().StringVarP(&flags.persona, "persona", "p", "", "Path to a YAML persona file overriding the config persona")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Log every component run")

	return cmd
}

func run(ctx context.Context, flags *rootFlags, out io.Writer) error {
	cfg, err := LoadConfig(flags.config)
	if err != nil {
		return err
	}
	if flags.model != "" {
		cfg.Backend.Model = flags.model
	}
	if flags.persona != "" {
		if cfg.Persona, err = LoadPersona(flags.persona); err != nil {
			return err
		}
	}

	backend, err := newBackend(ctx, cfg.Backend)
	if err != nil {
		return err
	}

	c, err := newChain(cfg.Persona)
	if err != nil {
		return err
	}

	var opts []chain.Option
	if cfg.Debug || flags.debug {
		logrus.SetLevel(logrus.DebugLevel)
		opts = append(opts, chain.WithCallbacks(logging.NewHandler(nil)))
	}

	return repl(ctx, newSession(c, backend, out, opts...))
}

func newBackend(ctx context.Context, cfg BackendConfig) (model.Backend, error) {
	b, err := openai.NewBackend(ctx, &openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		return ratelimit.New(b, rate.Limit(cfg.RateLimit), cfg.Burst), nil
	}

	return b, nil
}

func newChain(p PersonaConfig) (chain.Chain, error) {
	if !p.Enabled() {
		return chain.NewLLMChain(nil), nil
	}

	return chain.NewCharacterChain(&chain.CharacterConfig{Character: p.Character()})
}

func repl(ctx context.Context, s *session) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := historyPath()
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer saveHistory(line, historyFile)

	s.println(helpStyle.Render("Type `:help` to see the help message"))

	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit, err := s.handle(ctx, input)
		if err != nil {
			s.println(errorStyle.Render(err.Error()))
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "limitchain", "chat_history")
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = line.WriteHistory(f)
}
