package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockTokenBlacklist is a mock implementation of port.TokenBlacklist.
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenBlacklist) InvalidateUser(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, issuedAt)
	return args.Bool(0), args.Error(1)
}
