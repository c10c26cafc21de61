package contract

import "fmt"

// ContractDefinitionError means a contract is malformed. It is always a configuration
// mistake, so callers should stop before running anything.
type ContractDefinitionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ContractDefinitionError) Error() string {
	if e.Path == "" {
		return "invalid contract: " + e.Reason
	}
	return fmt.Sprintf("invalid contract for %q: %s", e.Path, e.Reason)
}

func (e *ContractDefinitionError) Unwrap() error {
	return e.Err
}

// ConflictError means a field path was defined twice with kinds that can't both be true. It
// is always wrapped in a ContractDefinitionError.
type ConflictError struct {
	Path      string
	Existing  Kind
	Requested Kind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q is already defined as %s, cannot redefine it as %s", e.Path, e.Existing, e.Requested)
}

type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no contract defined for %q", e.Path)
}

func definitionError(path, format string, args ...interface{}) error {
	return &ContractDefinitionError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
