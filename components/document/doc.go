/*
Package document 定义文档加载器与文档切分器的组件契约。

加载器把文本或文件转换为 schema.Document，切分器把过长的文本切成长度有界、
可以相互重叠的片段，使输入保持在模型的上下文限制之内。
*/
package document
