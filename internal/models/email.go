package models

import (
	"time"
)

// ReceivedAtLayout is the fixed-width UTC layout used for received_at.
// Every value has the same length, so lexicographic order equals chronological order.
const ReceivedAtLayout = "2006-01-02T15:04:05.000Z"

// Email represents a captured message addressed to the target recipient
type Email struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Recipient  string `gorm:"not null" json:"recipient"`
	Sender     string `gorm:"not null" json:"sender"`
	Subject    string `gorm:"not null" json:"subject"`
	Body       string `gorm:"not null" json:"body"`
	HTML       string `gorm:"column:html;not null" json:"html"`
	ReceivedAt string `gorm:"not null" json:"received_at"`
}

// TableName returns the table name for Email
func (Email) TableName() string {
	return "emails"
}

// ReceivedTime parses ReceivedAt back into a time.Time.
func (e *Email) ReceivedTime() (time.Time, error) {
	return ParseReceivedAt(e.ReceivedAt)
}

// EmailListItem is a lightweight version for list views
type EmailListItem struct {
	ID         uint   `json:"id"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	Preview    string `json:"preview"`
	ReceivedAt string `json:"received_at"`
}

// FormatReceivedAt renders t as a received_at value.
func FormatReceivedAt(t time.Time) string {
	return t.UTC().Format(ReceivedAtLayout)
}

// ParseReceivedAt parses a received_at value.
func ParseReceivedAt(s string) (time.Time, error) {
	return time.Parse(ReceivedAtLayout, s)
}
