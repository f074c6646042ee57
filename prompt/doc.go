// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package prompt 实现提示词模板替换引擎。

模板中的占位符形如 <!fieldName!>，渲染时替换为上下文中同名字段的字符串形式。
未解析的占位符原样保留（不报错），因为部分模板会在上下文尚未完整时渲染。
不支持嵌套或条件逻辑，这是纯替换，不是模板语言。
*/
package prompt
