// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package extract 从模型的自由文本输出中提取被标记包围的结构化片段。

每条 Rule 由一对字面量标记（如 [START DATA SAMPLE] / [END DATA SAMPLE]）、
目标字段名和变换函数组成。规则彼此独立执行，结果合并为一个输出映射；
未命中时写入哨兵值 MissingInResponse，提取永远不会返回错误或 panic。

标记按字面量查找，不构造正则表达式，因此不存在注入问题。
*/
package extract
