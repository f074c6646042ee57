// Package config 提供 synthdoc 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（SYNTHDOC_ 前缀）的顺序加载，
// 覆盖生成模型、思维流程与修复循环、外部校验器、运行记录存储、
// 日志、遥测与指标等配置段。
package config
