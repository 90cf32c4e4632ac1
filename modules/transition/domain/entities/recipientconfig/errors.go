package recipientconfig

import "github.com/go-faster/errors"

// ErrNotFound is returned when no configuration exists for a scope tuple.
var ErrNotFound = errors.New("recipient configuration not found")
