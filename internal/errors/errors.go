// Package errors holds the sentinel errors shared by the repository, intake
// and HTTP layers, and maps them to machine-readable response codes.
package errors

import (
	"errors"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRecipientRejected = errors.New("recipient rejected")
	ErrParseFailed       = errors.New("failed to parse message")
	ErrSchemaMissing     = errors.New("schema not initialized")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error codes for API responses
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeRecipientRejected = "RECIPIENT_REJECTED"
	CodeParseFailed       = "PARSE_FAILED"
	CodeSchemaMissing     = "SCHEMA_MISSING"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// codes is checked in order; the first sentinel found in the chain wins.
var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, CodeNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrRecipientRejected, CodeRecipientRejected},
	{ErrParseFailed, CodeParseFailed},
	{ErrSchemaMissing, CodeSchemaMissing},
	{ErrUnauthorized, CodeUnauthorized},
}

// IsRejected reports whether err is a recipient rejection
func IsRejected(err error) bool {
	return errors.Is(err, ErrRecipientRejected)
}

// GetErrorCode returns the response code for err, CodeInternalError when
// no known sentinel is wrapped.
func GetErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternalError
}
