// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package validator 提供通过 HTTP 调用外部结构校验服务的 repair.Validator 实现。

校验服务接收原始产物作为请求体，响应体（去除首尾空白后）等于成功标记时表示通过，
否则整个响应体即为交给下一次修复的校验报告。

非 2xx 状态码与网络错误不属于校验结论，以 VALIDATOR_UNAVAILABLE 错误返回，
修复循环会立即终止。
*/
package validator
