package query

import "errors"

// The engine reports failures as error values, never panics — every one of
// these corresponds to a distinct failure kind.
var (
	ErrSymbolNotFound        = errors.New("query: symbol not found")
	ErrTypeNotFound          = errors.New("query: type not found")
	ErrMemberNotFound        = errors.New("query: member not found")
	ErrModuleNotFound        = errors.New("query: module not found")
	ErrNoCompatibleFunction  = errors.New("query: no compatible function for dispatch")
	ErrAmbiguousDispatch     = errors.New("query: ambiguous dispatch")
	ErrNonCanonicalArg       = errors.New("query: argument is not in canonical form")
	ErrCancelled             = errors.New("query: cancelled")
	ErrMissingTypeAnnotation = errors.New("query: missing type annotation")
)
