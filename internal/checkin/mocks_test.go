package checkin

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/subscription"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID string, at time.Time) (*CheckIn, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckIn), args.Error(1)
}

func (m *MockRepository) FindActiveByUser(ctx context.Context, userID string) (*CheckIn, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckIn), args.Error(1)
}

func (m *MockRepository) CountTodayCheckIns(ctx context.Context, userID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*CheckIn, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckIn), args.Error(1)
}

func (m *MockRepository) Checkout(ctx context.Context, id, userID string, at time.Time, duration int) (*CheckIn, error) {
	args := m.Called(ctx, id, userID, at, duration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckIn), args.Error(1)
}

func (m *MockRepository) FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]CheckIn, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CheckIn), args.Error(1)
}

type MockSubscriptions struct {
	mock.Mock
}

func (m *MockSubscriptions) FindActiveByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendCheckOutSummary(ctx context.Context, email, name string, checkIn, checkOut time.Time, durationMinutes int) error {
	return m.Called(ctx, email, name, checkIn, checkOut, durationMinutes).Error(0)
}
