package decl

import (
	"strconv"
	"strings"
)

// Kind classifies a semantic type descriptor.
type Kind int

const (
	KindInvalid Kind = iota
	KindAny
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindFile
	KindArray
	KindMap
	KindObject
	KindFuture
	KindToken
	KindRequest
	KindVoid
	KindService
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindAny:     "any",
	KindString:  "string",
	KindInteger: "integer",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindFile:    "file",
	KindArray:   "array",
	KindMap:     "map",
	KindObject:  "object",
	KindFuture:  "future",
	KindToken:   "token",
	KindRequest: "request",
	KindVoid:    "void",
	KindService: "service",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Type is a resolved semantic type descriptor. The compiler never inspects Go
// types directly; loaders (reflection, manifests, hand-written declarations)
// produce Type values instead.
//
// Elem is the array item, map value, future payload or token element
// depending on Kind.
type Type struct {
	Name   string
	Kind   Kind
	Format string
	Elem   *Type

	// Object shape.
	Fields       []Field
	Constructors []Constructor

	// Service is set when Kind is KindService. A method returning such a
	// type is a sub-resource locator.
	Service *Service
}

// Field is a single property of an object type.
type Field struct {
	Name        string
	Type        *Type
	Required    bool
	Description string

	// Tag holds extra schema constraints in the "openapi" struct tag syntax
	// (e.g. "minimum=0,maximum=150,format=email").
	Tag string
}

// Constructor is a candidate way to build an object type from a request
// payload. Exactly one constructor carrying the Creator marker is expected
// on types used as request bodies.
type Constructor struct {
	Creator bool
	Params  []*Param
}

// IsVoid reports whether t describes the absence of a payload.
func (t *Type) IsVoid() bool {
	return t == nil || t.Kind == KindVoid
}

// SimpleName returns the part of the name after the last package qualifier.
func (t *Type) SimpleName() string {
	if t == nil {
		return ""
	}
	name := t.Name
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		if dot := strings.LastIndexByte(name[:idx], '.'); dot >= 0 {
			return name[dot+1:]
		}
		return name
	}
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		return name[dot+1:]
	}
	return name
}

// Payload unwraps asynchronous-result wrappers and returns the inner type.
func (t *Type) Payload() *Type {
	for t != nil && t.Kind == KindFuture {
		t = t.Elem
	}
	return t
}

// Creators returns the constructors carrying the Creator marker.
func (t *Type) Creators() []Constructor {
	if t == nil {
		return nil
	}
	var out []Constructor
	for _, c := range t.Constructors {
		if c.Creator {
			out = append(out, c)
		}
	}
	return out
}

// Primitive constructs a descriptor for a primitive kind.
func Primitive(kind Kind, format string) *Type {
	return &Type{Kind: kind, Format: format}
}

// ArrayOf constructs an array descriptor.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// MapOf constructs a string-keyed map descriptor.
func MapOf(elem *Type) *Type {
	return &Type{Kind: KindMap, Elem: elem}
}

// FutureOf constructs an asynchronous-result descriptor.
func FutureOf(elem *Type) *Type {
	return &Type{Kind: KindFuture, Elem: elem}
}

// TokenOf constructs a typed-token descriptor wrapping elem.
func TokenOf(name string, elem *Type) *Type {
	return &Type{Name: name, Kind: KindToken, Elem: elem}
}

// Object constructs a named object descriptor.
func Object(name string, fields ...Field) *Type {
	return &Type{Name: name, Kind: KindObject, Fields: fields}
}

// Void is the "no content" descriptor.
var Void = &Type{Kind: KindVoid}

// Request is the raw incoming-request handle descriptor.
var Request = &Type{Name: "http.Request", Kind: KindRequest}
