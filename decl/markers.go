package decl

import "reflect"

// Future marks an asynchronous result whose payload is T. A method returning
// Future[Report] is documented exactly like one returning Report.
type Future[T any] struct{}

func (Future[T]) futurePayload() reflect.Type { return reflect.TypeFor[T]() }

// Token captures a type argument that would otherwise be lost, the way a
// typed token does. Token[[]Event] used as a request or response type stands
// for []Event.
type Token[T any] struct{}

func (Token[T]) tokenElement() reflect.Type { return reflect.TypeFor[T]() }

type futureMarker interface {
	futurePayload() reflect.Type
}

type tokenMarker interface {
	tokenElement() reflect.Type
}

var (
	futureMarkerType = reflect.TypeFor[futureMarker]()
	tokenMarkerType  = reflect.TypeFor[tokenMarker]()
)
