package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not resolve.
// Single-entity operations treat it as fatal; batch operations (template
// application, unit clone) degrade it to a per-item warning.
var ErrNotFound = errors.New("entity not found")
