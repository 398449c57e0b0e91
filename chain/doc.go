/*
Package chain 实现可组合的模型调用链。

链把一组命名输入转换为提示词消息，调用模型后端，再把结果映射为命名输出：

	c := chain.NewLLMChain(prompt.MustFromString(`Hi {name:"friend"}, answer: {question}`))
	out, err := chain.Apply(ctx, c, backend, map[string]string{"question": "2+2?"},
		chain.WithMemory(mem))
	// out["answer"] 为模型的回复

简单链（LLMChain、CharacterChain）直接使用 DefaultGenerate；
组合链（SeqChain、MapReduceChain、MapRerankChain）持有其他 Chain，
按各自的策略发起多次调用。
*/
package chain
