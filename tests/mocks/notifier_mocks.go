package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
)

// MockNotifier implements services.Notifier and records every notification
type MockNotifier struct {
	mock.Mock
	mu            sync.Mutex
	Notifications []*models.Email
}

// NewMockNotifier creates a new MockNotifier instance
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Notifications: make([]*models.Email, 0),
	}
}

// NotifyNewEmail records the stored email
func (m *MockNotifier) NotifyNewEmail(email *models.Email) {
	m.Called(email)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, email)
}

// Count returns the number of recorded notifications
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

// Last returns the most recent notification, or nil
func (m *MockNotifier) Last() *models.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Notifications) == 0 {
		return nil
	}
	return m.Notifications[len(m.Notifications)-1]
}
