package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateOrder(ctx context.Context, ord *Order) (*Order, error) {
	ret := _m.Called(ctx, ord)

	var r0 *Order
	if rf, ok := ret.Get(0).(func(context.Context, *Order) *Order); ok {
		r0 = rf(ctx, ord)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Order)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *Order) error); ok {
		r1 = rf(ctx, ord)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) GetOrderByID(ctx context.Context, orderID int64) (*Order, error) {
	ret := _m.Called(ctx, orderID)

	var r0 *Order
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Order); ok {
		r0 = rf(ctx, orderID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Order)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, orderID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindAll(ctx context.Context, filter ListFilter) ([]*Order, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*Order
	if rf, ok := ret.Get(0).(func(context.Context, ListFilter) []*Order); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Order)
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

func (_m *MockRepository) FindPendingSince(ctx context.Context, since time.Time) ([]PendingOrder, error) {
	ret := _m.Called(ctx, since)

	var r0 []PendingOrder
	if rf, ok := ret.Get(0).(func(context.Context, time.Time) []PendingOrder); ok {
		r0 = rf(ctx, since)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]PendingOrder)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, time.Time) error); ok {
		r1 = rf(ctx, since)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) UpdateStatus(ctx context.Context, orderID int64, status Status) error {
	ret := _m.Called(ctx, orderID, status)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64, Status) error); ok {
		r0 = rf(ctx, orderID, status)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) CountAll(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context) int64); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) SumTotalAmount(ctx context.Context) (decimal.Decimal, error) {
	ret := _m.Called(ctx)

	var r0 decimal.Decimal
	if rf, ok := ret.Get(0).(func(context.Context) decimal.Decimal); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(decimal.Decimal)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

var _ Repository = (*MockRepository)(nil)
