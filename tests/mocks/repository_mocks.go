package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
)

// MockEmailRepository implements repository.EmailRepository
type MockEmailRepository struct {
	mock.Mock
}

// Create stores a new email
func (m *MockEmailRepository) Create(ctx context.Context, email *models.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// GetByID retrieves an email by recipient and ID
func (m *MockEmailRepository) GetByID(ctx context.Context, recipient string, id uint) (*models.Email, error) {
	args := m.Called(ctx, recipient, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// GetLatest retrieves the newest email for a recipient
func (m *MockEmailRepository) GetLatest(ctx context.Context, recipient string) (*models.Email, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// ListByRecipient lists emails for a recipient
func (m *MockEmailRepository) ListByRecipient(ctx context.Context, recipient string) ([]models.Email, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Email), args.Error(1)
}

// GetPrevious retrieves the neighbour received before the given position
func (m *MockEmailRepository) GetPrevious(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error) {
	args := m.Called(ctx, recipient, receivedAt, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// GetNext retrieves the neighbour received after the given position
func (m *MockEmailRepository) GetNext(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error) {
	args := m.Called(ctx, recipient, receivedAt, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// CountOlderThan counts emails received before cutoff
func (m *MockEmailRepository) CountOlderThan(ctx context.Context, cutoff string) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteOlderThan deletes emails received before cutoff
func (m *MockEmailRepository) DeleteOlderThan(ctx context.Context, cutoff string) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
