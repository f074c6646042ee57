// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 管理运行记录表（synthdoc_runs、synthdoc_attempts）的
Schema 迁移，支持 PostgreSQL、MySQL 与 SQLite，基于 golang-migrate 实现。

SQL 迁移文件按方言内嵌在 migrations/<dialect>/ 下，表结构与 store 包的
GORM 模型保持一致；开启 database.auto_migrate 时 store 直接使用
AutoMigrate，生产环境建议关闭并通过 synthdoc migrate up 管理版本。

# 核心类型

  - Migrator / DefaultMigrator：Up、Down、Steps、Force、Version、
    Status、Info、Close。
  - CLI：为 migrate 子命令提供格式化输出。
  - NewMigratorFromDatabaseConfig：从 config.DatabaseConfig 创建迁移器。
*/
package migration
