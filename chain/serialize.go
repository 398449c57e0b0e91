package chain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/favbox/limitchain/components/prompt"
	"github.com/favbox/limitchain/schema"
)

// ErrUnknownChainType 序列化数据中的 chain_type 无法识别，或链的类型不支持序列化。
var ErrUnknownChainType = errors.New("unknown chain type")

const (
	typeLLM       = "llm_chain"
	typeCharacter = "character_chain"
	typeSeq       = "seq_chain"
	typeMapReduce = "map_reduce_chain"
	typeMapRerank = "map_rerank_chain"
)

// envelope 链的序列化格式，chain_type 决定其余字段的含义。
type envelope struct {
	ChainType string `json:"chain_type"`

	PromptTemplate *prompt.PromptTemplate `json:"prompt_template,omitempty"`

	Character       *Character        `json:"character,omitempty"`
	PersonaTemplate string            `json:"persona_template,omitempty"`
	PersonaFormat   schema.FormatType `json:"persona_format,omitempty"`

	Chain1      json.RawMessage `json:"chain1,omitempty"`
	Chain2      json.RawMessage `json:"chain2,omitempty"`
	MapChain    json.RawMessage `json:"map_chain,omitempty"`
	ReduceChain json.RawMessage `json:"reduce_chain,omitempty"`
}

// Marshal 把链及其嵌套的链序列化为 JSON。
//
//	data, _ := chain.Marshal(chain.NewSeqChain(first, second, nil))
//	// {"chain_type":"seq_chain","chain1":{"chain_type":"llm_chain",...},"chain2":{...}}
func Marshal(c Chain) ([]byte, error) {
	env, err := toEnvelope(c)
	if err != nil {
		return nil, err
	}

	return sonic.Marshal(env)
}

func toEnvelope(c Chain) (*envelope, error) {
	nested := func(c Chain) (json.RawMessage, error) {
		data, err := Marshal(c)
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	var err error
	switch t := c.(type) {
	case *LLMChain:
		return &envelope{ChainType: typeLLM, PromptTemplate: t.template}, nil
	case *CharacterChain:
		ch := t.character
		return &envelope{
			ChainType:       typeCharacter,
			PromptTemplate:  t.override,
			Character:       &ch,
			PersonaTemplate: t.personaTemplate,
			PersonaFormat:   t.personaFormat,
		}, nil
	case *SeqChain:
		env := &envelope{ChainType: typeSeq, PromptTemplate: t.template}
		if env.Chain1, err = nested(t.first); err != nil {
			return nil, err
		}
		if env.Chain2, err = nested(t.second); err != nil {
			return nil, err
		}
		return env, nil
	case *MapReduceChain:
		env := &envelope{ChainType: typeMapReduce}
		if env.MapChain, err = nested(t.mapper); err != nil {
			return nil, err
		}
		if env.ReduceChain, err = nested(t.reducer); err != nil {
			return nil, err
		}
		return env, nil
	case *MapRerankChain:
		env := &envelope{ChainType: typeMapRerank, PromptTemplate: t.template}
		if env.MapChain, err = nested(t.mapper); err != nil {
			return nil, err
		}
		return env, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownChainType, c)
	}
}

// Unmarshal 从 Marshal 生成的 JSON 还原链。
func Unmarshal(data []byte) (Chain, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal chain: %w", err)
	}

	nested := func(field string, raw json.RawMessage) (Chain, error) {
		if len(raw) == 0 {
			return nil, fmt.Errorf("unmarshal %s: missing %s", env.ChainType, field)
		}
		return Unmarshal(raw)
	}

	switch env.ChainType {
	case typeLLM:
		return NewLLMChain(env.PromptTemplate), nil
	case typeCharacter:
		config := &CharacterConfig{
			PersonaTemplate: env.PersonaTemplate,
			PersonaFormat:   env.PersonaFormat,
			PromptTemplate:  env.PromptTemplate,
		}
		if env.Character != nil {
			config.Character = *env.Character
		}
		return NewCharacterChain(config)
	case typeSeq:
		first, err := nested("chain1", env.Chain1)
		if err != nil {
			return nil, err
		}
		second, err := nested("chain2", env.Chain2)
		if err != nil {
			return nil, err
		}
		return NewSeqChain(first, second, env.PromptTemplate), nil
	case typeMapReduce:
		mapper, err := nested("map_chain", env.MapChain)
		if err != nil {
			return nil, err
		}
		reducer, err := nested("reduce_chain", env.ReduceChain)
		if err != nil {
			return nil, err
		}
		return NewMapReduceChain(mapper, reducer), nil
	case typeMapRerank:
		mapper, err := nested("map_chain", env.MapChain)
		if err != nil {
			return nil, err
		}
		return NewMapRerankChain(mapper, env.PromptTemplate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChainType, env.ChainType)
	}
}
