/*
Package components 定义 limitchain 支持的基本组件类型。
*/
package components

// Component 表示 limitchain 中不同类型的组件类型
type Component string

const (
	// ComponentOfPrompt 提示词模板组件，用于解析和填充提示词模板
	ComponentOfPrompt Component = "ChatTemplate"
	// ComponentOfChatModel 模型后端组件，负责真正的推理调用
	ComponentOfChatModel Component = "ChatModel"
	// ComponentOfChain 链组件，把命名输入转换为提示词，再把模型响应映射为命名输出
	ComponentOfChain Component = "Chain"
	// ComponentOfLoader 文档加载器组件，用于从文本或文件加载文档
	ComponentOfLoader Component = "Loader"
	// ComponentOfSplitter 文档切分器组件，用于把长文本切成有界的片段
	ComponentOfSplitter Component = "DocumentSplitter"
)

// Typer 获取组件实现的类型名称。
//
// 如果组件实现了 Typer，回调信息中的 RunInfo.Type 使用它的返回值。
// 推荐使用驼峰命名，例如 "OpenAI"、"MapReduce"。
type Typer interface {
	GetType() string
}

// GetType 返回组件的类型名称，未实现 Typer 时返回 false。
func GetType(component any) (string, bool) {
	if typer, ok := component.(Typer); ok {
		return typer.GetType(), true
	}

	return "", false
}
