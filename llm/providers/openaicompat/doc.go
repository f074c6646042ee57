// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package openaicompat 提供 OpenAI 兼容协议的生成模型适配器。
package openaicompat
