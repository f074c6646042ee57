// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package workflow 提供多阶段生成流水线（思维流程）的定义、构建与执行。

# 概述

一个思维流程（ThoughtProcess）是命名的、有序的 stage 列表。每个 stage
接收上一 stage 产生的上下文（types.Wisdom），执行后返回合并了自身输出的
新上下文；stage 之间严格顺序执行，任一 stage 失败立即停止。

# 核心类型

  - Stage        — 执行单元接口 Execute(ctx, wisdom, opts)
  - Thinker      — 渲染模板 → 调用生成模型 → 按标记提取字段
  - FuncStep     — 普通 Go 函数步骤；内置 json / copy 两种类型
  - Pipeline     — 顺序执行 stage，失败时返回失败前的上下文
  - Registry     — 思维流程注册表，stage 类型通过静态工厂表解析
  - Conversation — 对单个思维流程暴露 GetResponse 契约

# 错误语义

  - 生成模型调用失败返回 GENERATION_TRANSPORT，流水线停止
  - 提取未命中不是错误，字段值为 extract.MissingInResponse
  - 未注册的思维流程或 stage 类型返回 CONFIGURATION，发生在任何生成之前
  - 普通步骤失败返回 STAGE_FAILED
*/
package workflow
