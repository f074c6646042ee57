package repair

import "context"

// Outcome 外部校验器对一个候选产物的结论
type Outcome struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message,omitempty"`
}

// Validator 外部校验器
// 返回 error 表示调用本身失败（网络、非 2xx 等），循环会立即终止。
type Validator interface {
	Validate(ctx context.Context, artifact string) (Outcome, error)
}

// ValidatorFunc 函数适配器
type ValidatorFunc func(ctx context.Context, artifact string) (Outcome, error)

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, artifact string) (Outcome, error) {
	return f(ctx, artifact)
}
