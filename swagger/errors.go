package swagger

import (
	"errors"
	"strings"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	// InvalidDeclaration: a request or body type does not have exactly one
	// creator constructor, or a parameter lacks mandatory metadata.
	InvalidDeclaration ErrorKind = iota + 1
	// UnresolvableType: a payload or parameter type maps to no schema kind.
	// Recovered with an opaque schema and logged; never returned by Read.
	UnresolvableType
	// UnsupportedShape: an explicit typed-token request is not an array.
	UnsupportedShape
	// CyclicSubResource: sub-resource recursion revisits a service already
	// on the current path.
	CyclicSubResource
)

var (
	ErrInvalidDeclaration = errors.New("invalid declaration")
	ErrUnresolvableType   = errors.New("unresolvable type")
	ErrUnsupportedShape   = errors.New("unsupported shape")
	ErrCyclicSubResource  = errors.New("cyclic sub-resource")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case InvalidDeclaration:
		return ErrInvalidDeclaration
	case UnresolvableType:
		return ErrUnresolvableType
	case UnsupportedShape:
		return ErrUnsupportedShape
	case CyclicSubResource:
		return ErrCyclicSubResource
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return "unknown error"
}

// Error is a compilation failure attributed to a service method. Match the
// kind with errors.Is against the Err* sentinels.
type Error struct {
	Kind    ErrorKind
	Service string
	Method  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("swagger: ")
	b.WriteString(e.Kind.String())
	if e.Service != "" {
		b.WriteString(": ")
		b.WriteString(e.Service)
		if e.Method != "" {
			b.WriteByte('.')
			b.WriteString(e.Method)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
