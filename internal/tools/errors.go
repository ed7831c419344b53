package tools

import "errors"

// Registry errors.
var (
	// ErrToolNotFound is returned when a tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty is returned when a tool has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecuteNil is returned when a tool has no execute function.
	ErrToolExecuteNil = errors.New("tool execute function cannot be nil")

	// ErrToolAlreadyRegistered is returned when registering a duplicate.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrMissingRequiredArg is returned when a required argument is missing.
	ErrMissingRequiredArg = errors.New("missing required argument")

	// ErrInvalidArgType is returned when an argument has the wrong type.
	ErrInvalidArgType = errors.New("invalid argument type")
)

// Operation errors. Configuration and validation failures are reported
// before anything is dispatched to the retrieval service.
var (
	// ErrMissingQuery is returned when a query has no terms.
	ErrMissingQuery = errors.New("query requires at least one term")

	// ErrInvalidProjectRoot is returned when the supplied project root does
	// not resolve to an existing directory.
	ErrInvalidProjectRoot = errors.New("project root is not an existing directory")

	// ErrNoValidFiles is returned when a file operation is left with nothing
	// to do after dropping paths that do not exist as regular files.
	ErrNoValidFiles = errors.New("no existing files to operate on")

	// ErrCollectionNotFound is returned when the retrieval service reports
	// that the target project has never been indexed.
	ErrCollectionNotFound = errors.New("no indexed collection for this project")
)
