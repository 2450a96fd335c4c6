package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
	common "github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// MockItemExporter is a mock type for the ItemExporter type
type MockItemExporter struct {
	mock.Mock
}

// Open provides a mock function with given fields: ctx, schemas
func (_m *MockItemExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	_va := make([]interface{}, len(schemas))
	for _i := range schemas {
		_va[_i] = schemas[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, ctx)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	if len(ret) == 0 {
		panic("no return value specified for Open")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, ...*common.Schema) error); ok {
		r0 = rf(ctx, schemas...)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Export provides a mock function with given fields: ctx, item
func (_m *MockItemExporter) Export(ctx context.Context, item common.Item) error {
	ret := _m.Called(ctx, item)

	if len(ret) == 0 {
		panic("no return value specified for Export")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, common.Item) error); ok {
		r0 = rf(ctx, item)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function with given fields: ctx
func (_m *MockItemExporter) Close(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockItemExporter creates a new instance of MockItemExporter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockItemExporter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockItemExporter {
	m := &MockItemExporter{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
