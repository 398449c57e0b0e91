/*
Package prompt 实现提示词模板的解析、填充与持久化。

模板语法：

	a simple prompt with a variable: {var}
	a simple prompt with a partial variable: {var:"default value"}
	escape brackets with a backslash: \{var\}

模板解析一次后即不可变，可安全地被多个协程并发读取。
*/
package prompt
