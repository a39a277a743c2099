// internal/utils/errors.go
package utils

import (
	"errors"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNoIDProvided        = errors.New("no id provided")
	ErrApplicationNotFound = errors.New("application not found")

	// Returned by the form controller before it ever reaches the network.
	ErrMissingResumeID = errors.New("resume url has no application id")
	ErrNoApplication   = errors.New("no application loaded")
)
