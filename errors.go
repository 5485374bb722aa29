// File: structargs/errors.go
package structargs

import (
	"errors"
	"fmt"
)

// ErrHelp is returned by parsing when -h or --help is requested and the
// builder uses ContinueOnError.
var ErrHelp = errors.New("help requested")

// BuilderError reports invalid builder setup: a non-struct prototype,
// conflicting include/exclude field sets, malformed field annotations, or
// colliding flag names. It is detected before any argument parsing.
type BuilderError struct {
	Msg string
}

func (e *BuilderError) Error() string {
	return "structargs: " + e.Msg
}

func builderErrorf(format string, args ...any) error {
	return &BuilderError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports a failure while assembling the merged configuration
// or constructing the record: an unreadable or unparseable file, malformed
// override syntax, or a rejected record construction. Field and Path are
// set when applicable.
type ConfigError struct {
	Field string // offending field name, if field-scoped
	Path  string // offending file path, if file-scoped
	Msg   string
	Err   error // underlying cause
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	return "structargs: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FileLoadError reports a failure resolving '@file' indirection for a
// file-loadable field: the path is empty, missing, not a regular file, not
// readable, or not valid UTF-8.
type FileLoadError struct {
	Field string
	Path  string
	Err   error
}

func (e *FileLoadError) Error() string {
	msg := fmt.Sprintf("failed to load file for field %q", e.Field)
	if e.Path != "" {
		msg += fmt.Sprintf(" from %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "structargs: " + msg
}

func (e *FileLoadError) Unwrap() error {
	return e.Err
}
