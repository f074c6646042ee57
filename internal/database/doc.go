// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 根据配置打开 GORM 连接（sqlite、postgres、mysql），
并通过 PoolManager 管理连接池、健康检查与事务重试。

# 核心类型

  - Open：按 config.DatabaseConfig 选择方言并打开 GORM 连接。
  - PoolManager：持有 GORM DB 与底层 sql.DB，提供 DB()、Ping()、
    Stats()、Close()；后台健康检查把连接数写入 Prometheus 指标。
  - PoolConfig：连接池配置，可由 PoolConfigFrom 从数据库配置派生。
  - TransactionFunc：事务回调函数类型。

# 主要能力

  - WithTransaction 提供单次事务执行，WithTransactionRetry 在死锁、
    序列化失败等可重试错误时按指数退避重试。
*/
package database
