package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/synthdoc/repair"
)

// MockValidator 是 repair.Validator 的模拟实现
// 按调用顺序返回脚本化的结论，耗尽后重复最后一条。
type MockValidator struct {
	mu       sync.Mutex
	outcomes []repair.Outcome
	err      error
	errAt    int
	calls    []string
}

// NewMockValidator 创建默认返回 invalid 的 MockValidator
func NewMockValidator() *MockValidator {
	return &MockValidator{
		outcomes: []repair.Outcome{{IsValid: false, Message: "mock: invalid"}},
	}
}

// AlwaysValid 返回总是通过的校验器
func AlwaysValid() *MockValidator {
	return NewMockValidator().WithOutcomes(repair.Outcome{IsValid: true})
}

// AlwaysInvalid 返回总是拒绝并给出 message 的校验器
func AlwaysInvalid(message string) *MockValidator {
	return NewMockValidator().WithOutcomes(repair.Outcome{IsValid: false, Message: message})
}

// ValidOnCall 返回在第 n 次调用（从 1 开始）时通过的校验器
func ValidOnCall(n int) *MockValidator {
	outcomes := make([]repair.Outcome, 0, n)
	for i := 1; i < n; i++ {
		outcomes = append(outcomes, repair.Outcome{IsValid: false, Message: "mock: invalid"})
	}
	outcomes = append(outcomes, repair.Outcome{IsValid: true})
	return NewMockValidator().WithOutcomes(outcomes...)
}

// WithOutcomes 设置按调用顺序返回的结论
func (m *MockValidator) WithOutcomes(outcomes ...repair.Outcome) *MockValidator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append([]repair.Outcome(nil), outcomes...)
	return m
}

// WithError 设置第 n 次调用（从 1 开始，0 表示每次）返回调用错误
func (m *MockValidator) WithError(err error, n int) *MockValidator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.errAt = n
	return m
}

// Validate implements repair.Validator.
func (m *MockValidator) Validate(_ context.Context, artifact string) (repair.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, artifact)
	n := len(m.calls)

	if m.err != nil && (m.errAt == 0 || m.errAt == n) {
		return repair.Outcome{}, m.err
	}
	if len(m.outcomes) == 0 {
		return repair.Outcome{}, nil
	}
	i := n - 1
	if i >= len(m.outcomes) {
		i = len(m.outcomes) - 1
	}
	return m.outcomes[i], nil
}

// Calls 返回每次收到的产物
func (m *MockValidator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount 返回调用次数
func (m *MockValidator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
