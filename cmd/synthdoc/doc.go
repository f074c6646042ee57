// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 synthdoc 命令行程序入口。

# 概述

cmd/synthdoc 读取元素规范（JSON 记录数组），运行思维流程生成样例文档，
交给外部校验器检查，并在未通过时带着校验报告重新生成，直到通过或耗尽
修复预算。程序支持 YAML 配置文件加载、结构化日志（zap）、Prometheus
指标以及可选的运行记录持久化。

# 子命令

  - generate   生成单个文档，失败时输出最后的产物与原因
  - batch      按规范文件（或 --split-roots 按文档根）并发生成
  - processes  列出已注册的思维流程与各 stage 读取的上下文字段
  - runs       查看持久化的运行记录（list / show）
  - migrate    运行记录存储的数据库迁移（up / down / steps / force / version / status）
  - version    版本信息，Version、BuildTime、GitCommit 通过 ldflags 注入
*/
package main
