package repository

import (
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
)

// Common repository errors
var (
	ErrNotFound     = apperrors.ErrNotFound
	ErrInvalidInput = apperrors.ErrInvalidInput
)
