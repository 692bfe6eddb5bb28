package fixtures

import (
	"fmt"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
)

// TargetEmail is the inbox address shared by fixtures
const TargetEmail = "inbox@example.com"

// EmailBuilder creates test Email instances with fluent API
type EmailBuilder struct {
	email models.Email
}

// NewEmailBuilder creates a new EmailBuilder with sensible defaults
func NewEmailBuilder() *EmailBuilder {
	return &EmailBuilder{
		email: models.Email{
			Recipient:  TargetEmail,
			Sender:     "sender@external.com",
			Subject:    "Test Subject",
			Body:       "This is a test email body.",
			ReceivedAt: models.FormatReceivedAt(time.Now()),
		},
	}
}

// WithID sets the email ID
func (b *EmailBuilder) WithID(id uint) *EmailBuilder {
	b.email.ID = id
	return b
}

// WithRecipient sets the recipient
func (b *EmailBuilder) WithRecipient(recipient string) *EmailBuilder {
	b.email.Recipient = recipient
	return b
}

// WithSender sets the sender address
func (b *EmailBuilder) WithSender(sender string) *EmailBuilder {
	b.email.Sender = sender
	return b
}

// WithSubject sets the subject
func (b *EmailBuilder) WithSubject(subject string) *EmailBuilder {
	b.email.Subject = subject
	return b
}

// WithBody sets the plain text body
func (b *EmailBuilder) WithBody(body string) *EmailBuilder {
	b.email.Body = body
	return b
}

// WithHTML sets the HTML body
func (b *EmailBuilder) WithHTML(html string) *EmailBuilder {
	b.email.HTML = html
	return b
}

// WithReceivedAt sets received_at from t
func (b *EmailBuilder) WithReceivedAt(t time.Time) *EmailBuilder {
	b.email.ReceivedAt = models.FormatReceivedAt(t)
	return b
}

// Build returns the constructed Email
func (b *EmailBuilder) Build() *models.Email {
	email := b.email
	return &email
}

// CreateEmails returns count emails received one minute apart, oldest first,
// ending at newest
func CreateEmails(count int, newest time.Time) []*models.Email {
	emails := make([]*models.Email, count)
	for i := 0; i < count; i++ {
		emails[i] = NewEmailBuilder().
			WithSubject(generateSubject(i)).
			WithReceivedAt(newest.Add(-time.Duration(count-1-i) * time.Minute)).
			Build()
	}
	return emails
}

// MessageBuilder composes raw RFC 5322 messages
type MessageBuilder struct {
	from    string
	to      string
	subject string
	text    string
	html    string
}

// NewMessageBuilder creates a plain text message with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		from:    "Sender <sender@external.com>",
		to:      TargetEmail,
		subject: "Test Subject",
		text:    "This is a test email body.",
	}
}

// From sets the From header
func (b *MessageBuilder) From(from string) *MessageBuilder {
	b.from = from
	return b
}

// To sets the To header
func (b *MessageBuilder) To(to string) *MessageBuilder {
	b.to = to
	return b
}

// Subject sets the Subject header
func (b *MessageBuilder) Subject(subject string) *MessageBuilder {
	b.subject = subject
	return b
}

// Text sets the plain text part
func (b *MessageBuilder) Text(text string) *MessageBuilder {
	b.text = text
	return b
}

// HTML sets the HTML part; with a text part the message becomes multipart/alternative
func (b *MessageBuilder) HTML(html string) *MessageBuilder {
	b.html = html
	return b
}

// String renders the message with CRLF line endings
func (b *MessageBuilder) String() string {
	var sb strings.Builder
	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&sb, "%s: %s\r\n", k, v)
		}
	}

	header("From", b.from)
	header("To", b.to)
	header("Subject", b.subject)
	header("MIME-Version", "1.0")

	switch {
	case b.html != "" && b.text != "":
		const boundary = "catchmail-fixture-boundary"
		header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, crlf(b.text))
		fmt.Fprintf(&sb, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, crlf(b.html))
		fmt.Fprintf(&sb, "--%s--\r\n", boundary)
	case b.html != "":
		header("Content-Type", "text/html; charset=utf-8")
		sb.WriteString("\r\n" + crlf(b.html) + "\r\n")
	default:
		header("Content-Type", "text/plain; charset=utf-8")
		sb.WriteString("\r\n" + crlf(b.text) + "\r\n")
	}

	return sb.String()
}

// Reader returns the message as an io.Reader
func (b *MessageBuilder) Reader() *strings.Reader {
	return strings.NewReader(b.String())
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

func generateSubject(index int) string {
	subjects := []string{
		"Welcome to our service",
		"Your order confirmation",
		"Important update",
		"Newsletter",
		"Account notification",
	}
	return subjects[index%len(subjects)]
}
