package product

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, prod *Product) error {
	ret := _m.Called(ctx, prod)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Product) error); ok {
		r0 = rf(ctx, prod)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByID(ctx context.Context, productID int64) (*Product, error) {
	ret := _m.Called(ctx, productID)

	var r0 *Product
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Product); ok {
		r0 = rf(ctx, productID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Product)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, productID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindByIDs(ctx context.Context, productIDs []int64) ([]*Product, error) {
	ret := _m.Called(ctx, productIDs)

	var r0 []*Product
	if rf, ok := ret.Get(0).(func(context.Context, []int64) []*Product); ok {
		r0 = rf(ctx, productIDs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Product)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []int64) error); ok {
		r1 = rf(ctx, productIDs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindAll(ctx context.Context, filter ListFilter) ([]*Product, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*Product
	if rf, ok := ret.Get(0).(func(context.Context, ListFilter) []*Product); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Product)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, ListFilter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) RestockBelow(ctx context.Context, threshold, increment int32) ([]*Product, error) {
	ret := _m.Called(ctx, threshold, increment)

	var r0 []*Product
	if rf, ok := ret.Get(0).(func(context.Context, int32, int32) []*Product); ok {
		r0 = rf(ctx, threshold, increment)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Product)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int32, int32) error); ok {
		r1 = rf(ctx, threshold, increment)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

var _ Repository = (*MockRepository)(nil)
