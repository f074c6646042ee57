// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供生成模型 HTTP 适配的公共基础层：OpenAI 兼容的请求/响应结构体、
HTTP 状态码到 llm.Error 的映射，以及错误响应体的解析。

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 llm.Error（含 Retryable 标记）
  - ReadErrorMessage — 解析 JSON 错误体，失败时回退为原始文本
  - ToChatResponse — OpenAI 兼容响应 → llm.ChatResponse
*/
package providers
