// Package parser turns raw RFC 5322 messages into the fields catchmail stores.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ErrEmptyMessage is returned when the raw message has no content at all
var ErrEmptyMessage = errors.New("empty message")

// A display name is only taken when an angle-bracketed address follows it.
var fromHeaderPattern = regexp.MustCompile(`^(?:"?([^"<]*?)"?\s*<)?([^<>\s]+@[^<>\s]+)>?$`)

// ParsedEmail represents a parsed email message
type ParsedEmail struct {
	SenderEmail string
	SenderName  string
	Subject     string
	BodyText    string
	BodyHTML    string
	// Warnings lists recoverable MIME defects found while parsing.
	Warnings []string
}

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyMessage
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIME message: %w", err)
	}

	parsed := &ParsedEmail{
		Subject:  strings.TrimSpace(env.GetHeader("Subject")),
		BodyText: env.Text,
		BodyHTML: env.HTML,
	}

	parsed.SenderName, parsed.SenderEmail = senderFrom(env)

	for _, perr := range env.Errors {
		parsed.Warnings = append(parsed.Warnings, perr.Error())
	}

	return parsed, nil
}

// senderFrom prefers the decoded address list and falls back to a loose
// match on the raw header for values net/mail refuses.
func senderFrom(env *enmime.Envelope) (name, email string) {
	if list, err := env.AddressList("From"); err == nil && len(list) > 0 {
		return list[0].Name, list[0].Address
	}
	return parseFromHeader(env.GetHeader("From"))
}

// parseFromHeader extracts name and email from a From header.
// Values that are not an address yield an empty email.
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	matches := fromHeaderPattern.FindStringSubmatch(from)
	if len(matches) >= 3 {
		name = strings.Trim(strings.TrimSpace(matches[1]), `"`)
		email = strings.TrimSpace(matches[2])
		return name, email
	}

	return "", ""
}
