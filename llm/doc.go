// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 定义外部生成模型的调用契约。

# 概述

生成阶段（Thinker）只依赖 [Provider] 接口：输入为有序的 role/content 消息列表，
加上可选的采样温度与模型标识；输出为生成文本及用量、耗时元数据。
传输层失败通过 [*Error] 返回，永远不会被悄悄写进生成文本。

# 核心类型

  - [Provider]：同步补全接口（Completion + Name）
  - [ChatRequest] / [ChatResponse]：请求与响应
  - [ProviderRegistry]：按名称注册与查找 Provider
  - [Error] / [ErrorCode]：统一错误码，对齐 HTTP 状态与可重试性

具体的 HTTP 适配见 llm/providers/openaicompat。
*/
package llm
