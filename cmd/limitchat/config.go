package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/favbox/limitchain/chain"
)

// Config limitchat 的配置文件。
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Persona PersonaConfig `yaml:"persona"`
	Debug   bool          `yaml:"debug"`
}

// BackendConfig OpenAI 兼容后端的配置。
type BackendConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature *float32      `yaml:"temperature"`
	MaxTokens   *int          `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	// RateLimit 每秒允许的调用次数，0 表示不限流
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// PersonaConfig 角色设定，全部为空时不启用角色对话。
type PersonaConfig struct {
	BotName  string `yaml:"bot_name"`
	BotInfo  string `yaml:"bot_info"`
	UserName string `yaml:"user_name"`
	UserInfo string `yaml:"user_info"`
}

// Enabled 是否配置了角色。
func (p PersonaConfig) Enabled() bool {
	return p != PersonaConfig{}
}

// Character 转换为链使用的角色设定。
func (p PersonaConfig) Character() chain.Character {
	return chain.Character{
		BotName:  p.BotName,
		BotInfo:  p.BotInfo,
		UserName: p.UserName,
		UserInfo: p.UserInfo,
	}
}

// LoadConfig 读取 YAML 配置，展开环境变量后校验。
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadPersona 读取单独的角色设定文件，覆盖配置文件中的 persona。
func LoadPersona(path string) (PersonaConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PersonaConfig{}, fmt.Errorf("read persona: %w", err)
	}

	var p PersonaConfig
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &p); err != nil {
		return PersonaConfig{}, fmt.Errorf("parse persona: %w", err)
	}
	if err = p.validate(); err != nil {
		return PersonaConfig{}, fmt.Errorf("invalid persona: %w", err)
	}

	return p, nil
}

func (c *Config) validate() error {
	b := c.Backend
	if b.Model == "" {
		return errors.New("backend.model is required")
	}
	if b.APIKey == "" && b.BaseURL == "" {
		return errors.New("backend.api_key is required when backend.base_url is not set")
	}
	if b.Temperature != nil && (*b.Temperature < 0 || *b.Temperature > 2) {
		return fmt.Errorf("backend.temperature must be in [0, 2], got %v", *b.Temperature)
	}
	if b.MaxTokens != nil && *b.MaxTokens <= 0 {
		return fmt.Errorf("backend.max_tokens must be positive, got %d", *b.MaxTokens)
	}
	if b.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative, got %s", b.Timeout)
	}
	if b.RateLimit < 0 {
		return fmt.Errorf("backend.rate_limit must not be negative, got %v", b.RateLimit)
	}
	if b.Burst < 0 {
		return fmt.Errorf("backend.burst must not be negative, got %d", b.Burst)
	}

	return c.Persona.validate()
}

func (p PersonaConfig) validate() error {
	if p.Enabled() && p.BotName == "" {
		return errors.New("persona.bot_name is required when a persona is configured")
	}

	return nil
}
