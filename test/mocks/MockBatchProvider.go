package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
	rpc "github.com/thirdweb-dev/ethereum-etl/internal/rpc"
)

// MockBatchProvider is a mock type for the BatchProvider type
type MockBatchProvider struct {
	mock.Mock
}

// MakeRequest provides a mock function with given fields: ctx, requests
func (_m *MockBatchProvider) MakeRequest(ctx context.Context, requests []rpc.Request) ([]rpc.Response, error) {
	ret := _m.Called(ctx, requests)

	if len(ret) == 0 {
		panic("no return value specified for MakeRequest")
	}

	var r0 []rpc.Response
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, []rpc.Request) ([]rpc.Response, error)); ok {
		return rf(ctx, requests)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []rpc.Request) []rpc.Response); ok {
		r0 = rf(ctx, requests)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]rpc.Response)
	}

	if rf, ok := ret.Get(1).(func(context.Context, []rpc.Request) error); ok {
		r1 = rf(ctx, requests)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockBatchProvider creates a new instance of MockBatchProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBatchProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBatchProvider {
	m := &MockBatchProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
