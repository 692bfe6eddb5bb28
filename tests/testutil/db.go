// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-catchmail/internal/database"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"gorm.io/gorm"
)

// TargetEmail is the inbox address used across tests
const TargetEmail = "inbox@example.com"

// NewSQLiteDB returns an initialized in-memory database closed at test end
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect("sqlite://:memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.InitSchema(context.Background(), db))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// InsertEmail stores an email for recipient received at the given time
func InsertEmail(t *testing.T, db *gorm.DB, recipient string, receivedAt time.Time, subject string) *models.Email {
	t.Helper()

	email := &models.Email{
		Recipient:  recipient,
		Sender:     "sender@example.com",
		Subject:    subject,
		Body:       "body of " + subject,
		ReceivedAt: models.FormatReceivedAt(receivedAt),
	}
	require.NoError(t, db.Create(email).Error)
	return email
}

// CountEmails returns the number of stored emails across all recipients
func CountEmails(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Email{}).Count(&count).Error)
	return count
}
