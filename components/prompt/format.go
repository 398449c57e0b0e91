package prompt

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/nodes"
	"github.com/nikolalohinski/gonja/parser"
	"github.com/slongfield/pyfmt"

	"github.com/favbox/limitchain/schema"
)

// FormatContent 按指定格式渲染任意内容字符串。
//
// 与 PromptTemplate 的语法无关，用于渲染角色设定等自由文本：
//
//	out, err := prompt.FormatContent("you need to act like {bot_name}", map[string]any{"bot_name": "Ashly"}, schema.FString)
func FormatContent(content string, vs map[string]any, formatType schema.FormatType) (string, error) {
	switch formatType {
	case schema.FString:
		return pyfmt.Fmt(content, vs)
	case schema.GoTemplate:
		parsedTmpl, err := template.New("template").
			Option("missingkey=error").
			Parse(content)
		if err != nil {
			return "", err
		}
		sb := new(strings.Builder)
		err = parsedTmpl.Execute(sb, vs)
		if err != nil {
			return "", err
		}
		return sb.String(), nil
	case schema.Jinja2:
		env, err := getJinjaEnv()
		if err != nil {
			return "", err
		}
		tpl, err := env.FromString(content)
		if err != nil {
			return "", err
		}
		out, err := tpl.Execute(vs)
		if err != nil {
			return "", err
		}
		return out, nil
	default:
		return "", fmt.Errorf("unknown format type: %v", formatType)
	}
}

var (
	jinjaEnvOnce sync.Once
	jinjaEnv     *gonja.Environment
	envInitErr   error
)

// jinjaDisabled 禁用的关键字，模板不能访问文件系统。
var jinjaDisabled = []string{"include", "extends", "import", "from"}

func getJinjaEnv() (*gonja.Environment, error) {
	jinjaEnvOnce.Do(func() {
		jinjaEnv = gonja.NewEnvironment(config.DefaultConfig, gonja.DefaultLoader)
		for _, keyword := range jinjaDisabled {
			if !jinjaEnv.Statements.Exists(keyword) {
				continue
			}

			keyword := keyword
			err := jinjaEnv.Statements.Replace(keyword, func(parser *parser.Parser, args *parser.Parser) (nodes.Statement, error) {
				return nil, fmt.Errorf("keyword[%s] has been disabled", keyword)
			})
			if err != nil {
				envInitErr = fmt.Errorf("init jinja env fail: %w", err)
				return
			}
		}
	})

	return jinjaEnv, envInitErr
}
