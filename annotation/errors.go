package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the root of all caller-input errors.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPath reports a malformed PathSpec passed to a lookup.
	ErrInvalidPath = fmt.Errorf("%w: invalid path spec", ErrInvalidArgument)
	// ErrPathNotFound reports a PathSpec segment that does not exist in the schema.
	ErrPathNotFound = fmt.Errorf("%w: path segment not found", ErrInvalidArgument)
	// ErrNilSchema reports a nil input schema.
	ErrNilSchema = fmt.Errorf("%w: schema cannot be nil", ErrInvalidArgument)

	// ErrContractViolation reports an impossible engine state. It indicates a
	// defect rather than bad schema input and aborts the run.
	ErrContractViolation = errors.New("annotation engine contract violation")
)

func contractViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}
