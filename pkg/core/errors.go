package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the history and version subsystems.
var (
	// ErrNoDocument indicates an operation that needs a loaded document
	// was called without one.
	ErrNoDocument = errors.New("no document loaded")

	// ErrNoBoundPath indicates the document has never been saved, so
	// there is no file to version or overwrite.
	ErrNoBoundPath = errors.New("document is not bound to a file")

	// ErrVersionNotFound indicates the referenced version file no longer
	// exists in the version directory.
	ErrVersionNotFound = errors.New("version not found")
)

// DecodeError reports a version or document file that could not be
// deserialized. Unlike background auto-save failures, a decode failure
// on an explicit restore must surface synchronously: silently losing
// the state the user asked for is unacceptable.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration value rejected at the
// load boundary.
type ConfigError struct {
	Key     string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s=%v: %s", e.Key, e.Value, e.Message)
}
