package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSynthesizer is a mock type for the service.Synthesizer type
type MockSynthesizer struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, text, outputPath
func (_m *MockSynthesizer) Synthesize(ctx context.Context, text string, outputPath string) error {
	ret := _m.Called(ctx, text, outputPath)

	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		return rf(ctx, text, outputPath)
	}
	return ret.Error(0)
}
