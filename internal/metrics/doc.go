// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的生成-校验链路指标采集能力。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制。默认注册到全局 Registry，测试或多实例场景可通过
NewCollectorWithRegistry 指定独立 Registry。

# 主要能力

  - 生成模型指标：请求总数、请求耗时、Token 用量，按 provider/model 分组。
  - Stage 指标：执行次数、耗时与提取未命中计数，按 process/stage 分组。
  - 校验指标：按 valid/invalid/error 统计校验调用次数与耗时。
  - 修复循环指标：终态计数与每次运行消耗的生成次数。
  - 数据库指标：活跃/空闲连接数 Gauge、查询耗时 Histogram。
*/
package metrics
