// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 synthdoc 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertErrorCode / AssertWisdomHas / AssertJSONEqual /
    AssertEventuallyTrue
  - 数据工具: MustJSON / MustParseJSON

# 子包

  - testutil/mocks: MockProvider（生成模型）与 MockValidator（外部校验器），
    均支持 Builder 模式、脚本化响应与错误注入
  - testutil/fixtures: 带提取标记的模型响应、元素规范与思维流程样例

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithResponse(fixtures.SampleResponse("<a/>", "ok"))
	resp, err := conv.GetResponse(ctx, inputs, workflow.RunOptions{})
	testutil.AssertWisdomHas(t, resp.Context, "sample", "<a/>")
*/
package testutil
