package store

import (
	domainerrors "github.com/trinestudio/trine-server/internal/errors"
)

// Sentinel errors. They are domain errors so callers can match them with
// errors.Is against the domain sentinels as well.
var (
	ErrNotFound     = domainerrors.NotFound("resource not found")
	ErrInvalidInput = domainerrors.Validation("invalid input")
)
