package export

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkbook is returned when the xlsx document cannot be built.
	ErrWorkbook = errors.New("failed to build workbook")

	// ErrFileExists is returned when every candidate file name is taken.
	ErrFileExists = errors.New("export file already exists")
)

// ExportError wraps a failure with the step that produced it.
type ExportError struct {
	// Op is the step that failed (e.g., "Write", "Save").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("export: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("export: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is matches the underlying error.
func (e *ExportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newExportError(op string, err error, details string) *ExportError {
	return &ExportError{Op: op, Err: err, Details: details}
}
