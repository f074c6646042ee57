// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 synthdoc 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 prompt、extract、workflow、
repair 等上层模块提供统一的类型契约。

# 核心类型

  - Wisdom            — 在各阶段之间传递的上下文（字段名 → 值）
  - Error / ErrorCode — 结构化错误体系，含 Retryable 标记与诊断 Details

# 主要能力

  - Context 传播：WithTraceID / WithRunID / WithThoughtProcess
  - 错误工具链：AsError / IsErrorCode / IsRetryable / GetErrorCode
  - Wisdom 合并：Merge 总是返回新 map，从不原地修改调用方的上下文
*/
package types
