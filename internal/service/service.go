// Package service holds the ownership and visibility rules shared by the
// blog's HTTP handlers.
package service

import (
	"time"

	"blogicum/internal/models"
)

// ErrInvalidForm means the submitted form carries field errors and the
// page should be redisplayed with them.
var ErrInvalidForm = models.NewValidationError("Please correct the errors below.")

// Clock returns the current time. Services use it to decide post visibility.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
