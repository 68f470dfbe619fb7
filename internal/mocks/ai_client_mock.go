package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAIClient is a mock type for the service.AIClient type
type MockAIClient struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt
func (_m *MockAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ret := _m.Called(ctx, prompt)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, prompt)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	return r0, ret.Error(1)
}
