// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 synthdoc 提供 TracerProvider、MeterProvider 与统一的 Tracer。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
package telemetry
