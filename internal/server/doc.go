// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理 Prometheus /metrics 端点的 HTTP 服务器生命周期。

# 概述

Manager 封装 net/http.Server：Start 同步绑定端口（端口冲突等错误立即返回），
随后在后台 goroutine 中提供服务；Shutdown 在超时内排空连接。
MetricsHandler 将任意 prometheus.Gatherer 挂载到 /metrics。

# 核心类型

  - Manager：持有 http.Server、net.Listener 与异步错误通道
  - Config：监听地址、读取请求头超时与优雅关闭超时
*/
package server
