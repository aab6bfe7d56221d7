package meta

import (
	"errors"
	"fmt"
)

// ConfigError reports an entity type whose mapping cannot be turned into a
// descriptor. It is returned when the descriptor is built and cached with it.
type ConfigError struct {
	// Type is the Go type name of the entity.
	Type string

	// Message describes what is wrong with the mapping.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("entity %s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("entity %s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
