// Package swagger compiles service declarations (package decl) into a
// Swagger 2.0 document.
//
// # Compiling
//
// A Reader walks a service declaration depth-first. For every exposed
// method it computes the path template, picks the verb, builds the
// operation (parameters, responses, tags, security, media types) and writes
// it into the Document it owns. Methods returning another service are
// sub-resource locators: the target service is scanned below the locator
// path and inherits its tags and parameters.
//
//	r := swagger.NewReader(
//	    swagger.WithInfo(swagger.Info{Title: "Reports", Version: "1.0.0"}),
//	    swagger.WithLogger(logger),
//	)
//	doc, err := r.Read(reports.Service(), false)
//
// Compile does the same for a list of services and verifies the result:
//
//	doc, err := swagger.Compile([]*decl.Service{users, reports})
//
// # Paths
//
// Service, method and locator path fragments are joined and normalized.
// Constrained variables are rewritten to plain template variables and the
// constraint becomes the pattern of the parameter with the same name:
//
//	"//users/{id:[0-9]+}/"  ->  "/users/{id}"   (id: pattern [0-9]+)
//	"/files/{id:uuid}"      ->  "/files/{id}"   (id: string/uuid)
//
// The macros uuid, int, float, slug, alpha, alphanum, date, hex and domain
// expand to their regex and type the path parameter.
//
// # Parameters
//
// Arguments are classified in this order:
//
//  1. An explicit request type on the operation. A typed token wrapping an
//     array becomes one required body parameter referencing an array model
//     named "<Service>_<method>"; any other token is UnsupportedShape.
//     Other request types must have exactly one creator constructor whose
//     parameters become the candidates.
//  2. A single argument marked as the whole body, handled like case 1.
//  3. The method arguments.
//
// Candidates with metadata become formData parameters when every candidate
// is a primitive or an array of primitives, and one body parameter
// referencing an object model otherwise. A leading raw request argument
// reads the implicit parameter table instead.
//
// # Models
//
// Named object types are registered under their qualified name ("pkg.Type")
// and referenced as "#/definitions/pkg.Type". Registering an identical
// model again is a no-op; a different shape under the same name is merged.
// Types with no schema kind are logged and documented as an opaque schema.
//
// # Errors
//
// Declaration mistakes stop the scan with an *Error whose kind is matched
// with errors.Is:
//
//	if errors.Is(err, swagger.ErrCyclicSubResource) { ... }
//
// # Output
//
// Document marshals to JSON and YAML, converts to OpenAPI 3 (ConvertV3,
// Validate) and is served with an interactive UI by Handle.
package swagger
