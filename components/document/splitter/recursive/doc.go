/*
Package recursive 提供按分隔符逐级递归切分文本的文档切分器。

分隔符按从粗到细排列。切分时先取最细的分隔符切开文本，
长度合适的片段去掉首尾空白后保留，并与相邻片段重新拼接到长度上限以内；
过长的片段用剩余的分隔符继续递归切分。分隔符用尽后，
按固定宽度的窗口切分，窗口每次前进 maxLength-overlap 个字符。

长度均按 rune 计数。
*/
package recursive
