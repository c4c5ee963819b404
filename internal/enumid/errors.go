package enumid

import "errors"

// Sentinel errors returned while resolving options or generating code.
// They are always wrapped with the offending option key, type name, or
// variant name; use [errors.Is] to classify.
var (
	// ErrNotAnEnum is returned when the annotated type is missing, is not
	// an interface, or has no implementing variant types in its package.
	ErrNotAnEnum = errors.New("not a union interface")

	// ErrUnrecognizedOption is returned for an option key outside the
	// supported set (config-file keys; unknown flags are rejected by the
	// flag parser with equivalent wording).
	ErrUnrecognizedOption = errors.New("unrecognized option")

	// ErrConflictingOptions is returned when two mutually exclusive
	// options are supplied together.
	ErrConflictingOptions = errors.New("conflicting options")

	// ErrInvalidIdentifier is returned when a supplied getter or type
	// name is not a legal Go identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnsupportedShape is returned when an option requires a variant
	// shape the union does not have.
	ErrUnsupportedShape = errors.New("unsupported variant shape")

	// ErrUnrecognizedDerive is returned for a derive name the generator
	// has no emitter for.
	ErrUnrecognizedDerive = errors.New("unrecognized derive")
)
