package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"gorm.io/gorm"
)

// EmailRepository defines the interface for captured email data access.
// Every read is scoped to a recipient.
type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) error
	GetByID(ctx context.Context, recipient string, id uint) (*models.Email, error)
	GetLatest(ctx context.Context, recipient string) (*models.Email, error)
	ListByRecipient(ctx context.Context, recipient string) ([]models.Email, error)
	GetPrevious(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error)
	GetNext(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error)
	CountOlderThan(ctx context.Context, cutoff string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff string) (int64, error)
}

// emailRepository implements EmailRepository using GORM
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new EmailRepository instance
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

// Create inserts a new email, stamping received_at when the caller left it empty
func (r *emailRepository) Create(ctx context.Context, email *models.Email) error {
	if strings.TrimSpace(email.Recipient) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	if email.ReceivedAt == "" {
		email.ReceivedAt = models.FormatReceivedAt(time.Now())
	}

	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		return fmt.Errorf("failed to create email: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an email by id, visible only to its recipient
func (r *emailRepository) GetByID(ctx context.Context, recipient string, id uint) (*models.Email, error) {
	var email models.Email
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient = ?", id, recipient).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email by ID: %w", result.Error)
	}
	return &email, nil
}

// GetLatest retrieves the most recently received email for a recipient
func (r *emailRepository) GetLatest(ctx context.Context, recipient string) (*models.Email, error) {
	var emails []models.Email
	result := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("received_at DESC, id DESC").
		Limit(1).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get latest email: %w", result.Error)
	}
	if len(emails) == 0 {
		return nil, ErrNotFound
	}
	return &emails[0], nil
}

// ListByRecipient retrieves all emails for a recipient, newest first
func (r *emailRepository) ListByRecipient(ctx context.Context, recipient string) ([]models.Email, error) {
	var emails []models.Email
	result := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("received_at DESC, id DESC").
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list emails: %w", result.Error)
	}
	return emails, nil
}

// GetPrevious returns the email immediately older than (receivedAt, id),
// or nil when there is none.
func (r *emailRepository) GetPrevious(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error) {
	var emails []models.Email
	result := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Where("(received_at < ? OR (received_at = ? AND id < ?))", receivedAt, receivedAt, id).
		Order("received_at DESC, id DESC").
		Limit(1).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get previous email: %w", result.Error)
	}
	if len(emails) == 0 {
		return nil, nil
	}
	return &emails[0], nil
}

// GetNext returns the email immediately newer than (receivedAt, id),
// or nil when there is none.
func (r *emailRepository) GetNext(ctx context.Context, recipient, receivedAt string, id uint) (*models.Email, error) {
	var emails []models.Email
	result := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Where("(received_at > ? OR (received_at = ? AND id > ?))", receivedAt, receivedAt, id).
		Order("received_at ASC, id ASC").
		Limit(1).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get next email: %w", result.Error)
	}
	if len(emails) == 0 {
		return nil, nil
	}
	return &emails[0], nil
}

// CountOlderThan counts emails of any recipient received strictly before cutoff
func (r *emailRepository) CountOlderThan(ctx context.Context, cutoff string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Email{}).Where("received_at < ?", cutoff).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count expired emails: %w", result.Error)
	}
	return count, nil
}

// DeleteOlderThan deletes emails of any recipient received strictly before cutoff
func (r *emailRepository) DeleteOlderThan(ctx context.Context, cutoff string) (int64, error) {
	result := r.db.WithContext(ctx).Where("received_at < ?", cutoff).Delete(&models.Email{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired emails: %w", result.Error)
	}
	return result.RowsAffected, nil
}
