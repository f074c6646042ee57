// Package mocks 提供生成模型与外部校验器的测试替身，
// 均支持 Builder 风格配置、脚本化响应与错误注入。
package mocks
