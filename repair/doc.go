/*
Package repair 实现生成-校验-修复循环。

循环状态：Generate → Validate → {Accept | Repair → Generate} → Exhausted。

  - 第 i 次尝试（i = 0..RetryLimit）的温度取 Schedule.At(i)，越界时取最后一个值
  - 校验失败且仍有预算时，把校验器消息写入 ErrorField、把上一次产物写入
    ArtifactField，然后重新生成
  - 预算耗尽返回 VALIDATION_EXHAUSTED，携带最后的产物与校验消息
  - 生成模型传输错误与校验器调用错误立即终止，不占用修复预算

是否通过只看 Outcome.IsValid，从不根据消息文本推断。
*/
package repair
