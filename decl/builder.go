package decl

// ServiceBuilder provides a fluent API for declaring a service in Go code.
// Payload arguments accept either a Go value (described through reflection)
// or a *Type for explicit control:
//
//	users := decl.NewService("api.Users").Path("/users").Tags("users")
//	users.Method("get").GET().Path("/{id:int}").
//	    Summary("Get a user").
//	    Implicit(decl.ImplicitParam{Name: "id", In: "path", DataType: "integer"}).
//	    Response(User{})
type ServiceBuilder struct {
	svc *Service
}

// NewService starts a service declaration with the given qualified name.
func NewService(name string) *ServiceBuilder {
	return &ServiceBuilder{svc: &Service{Name: name}}
}

// Path sets the class-level path fragment.
func (b *ServiceBuilder) Path(p string) *ServiceBuilder {
	b.svc.Path = p
	return b
}

// Value sets the declaration label used to derive a tag when no tags are set.
func (b *ServiceBuilder) Value(v string) *ServiceBuilder {
	b.svc.Value = v
	return b
}

// Hidden excludes the service from top-level scans.
func (b *ServiceBuilder) Hidden() *ServiceBuilder {
	b.svc.Hidden = true
	return b
}

// Tags appends declaration tags inherited by every operation.
func (b *ServiceBuilder) Tags(tags ...string) *ServiceBuilder {
	b.svc.Tags = append(b.svc.Tags, tags...)
	return b
}

// Authorizations appends security scheme names required by every operation.
func (b *ServiceBuilder) Authorizations(names ...string) *ServiceBuilder {
	b.svc.Authorizations = append(b.svc.Authorizations, names...)
	return b
}

// Method declares an exposed method. The returned builder already carries
// operation metadata.
func (b *ServiceBuilder) Method(name string) *MethodBuilder {
	m := &Method{Name: name, Operation: &Operation{}}
	b.svc.Methods = append(b.svc.Methods, m)
	return &MethodBuilder{m: m}
}

// Service returns the declaration. Later builder calls keep mutating it.
func (b *ServiceBuilder) Service() *Service {
	return b.svc
}

// MethodBuilder provides a fluent API for a single method declaration.
type MethodBuilder struct {
	m *Method
}

// Method returns the declaration.
func (b *MethodBuilder) Method() *Method {
	return b.m
}

// Path sets the method-level path fragment. Segments may carry a regex or a
// macro constraint: "/{id:[0-9]+}", "/{id:uuid}".
func (b *MethodBuilder) Path(p string) *MethodBuilder {
	b.m.Path = p
	return b
}

// Verb sets the method-level verb marker.
func (b *MethodBuilder) Verb(v Verb) *MethodBuilder {
	b.m.Verb = v
	return b
}

func (b *MethodBuilder) GET() *MethodBuilder     { return b.Verb(VerbGet) }
func (b *MethodBuilder) PUT() *MethodBuilder     { return b.Verb(VerbPut) }
func (b *MethodBuilder) POST() *MethodBuilder    { return b.Verb(VerbPost) }
func (b *MethodBuilder) DELETE() *MethodBuilder  { return b.Verb(VerbDelete) }
func (b *MethodBuilder) OPTIONS() *MethodBuilder { return b.Verb(VerbOptions) }
func (b *MethodBuilder) PATCH() *MethodBuilder   { return b.Verb(VerbPatch) }
func (b *MethodBuilder) HEAD() *MethodBuilder    { return b.Verb(VerbHead) }

// CustomVerb sets a custom verb marker used when no standard marker is set.
func (b *MethodBuilder) CustomVerb(v string) *MethodBuilder {
	b.m.CustomVerb = v
	return b
}

// HTTPMethod sets the verb on the operation metadata, overriding markers.
func (b *MethodBuilder) HTTPMethod(v string) *MethodBuilder {
	b.op().HTTPMethod = v
	return b
}

// JSON marks the method as a typed JSON request/response endpoint. Its
// return type documents the success response.
func (b *MethodBuilder) JSON() *MethodBuilder {
	b.m.JSONRequest = true
	return b
}

// Deprecated marks the method as deprecated.
func (b *MethodBuilder) Deprecated() *MethodBuilder {
	b.m.Deprecated = true
	return b
}

// Consumes sets the accepted media types.
func (b *MethodBuilder) Consumes(types ...string) *MethodBuilder {
	b.m.Consumes = append(b.m.Consumes, types...)
	return b
}

// Produces sets the produced media types.
func (b *MethodBuilder) Produces(types ...string) *MethodBuilder {
	b.m.Produces = append(b.m.Produces, types...)
	return b
}

// Summary sets the operation summary.
func (b *MethodBuilder) Summary(s string) *MethodBuilder {
	b.op().Summary = s
	return b
}

// Notes sets the operation description.
func (b *MethodBuilder) Notes(s string) *MethodBuilder {
	b.op().Notes = s
	return b
}

// Nickname sets the operation id.
func (b *MethodBuilder) Nickname(s string) *MethodBuilder {
	b.op().Nickname = s
	return b
}

// Tags appends operation tags.
func (b *MethodBuilder) Tags(tags ...string) *MethodBuilder {
	b.op().Tags = append(b.op().Tags, tags...)
	return b
}

// Hidden hides the operation.
func (b *MethodBuilder) Hidden() *MethodBuilder {
	b.op().Hidden = true
	return b
}

// Response sets the explicit success payload type.
func (b *MethodBuilder) Response(body any) *MethodBuilder {
	b.op().Response = TypeOf(body)
	return b
}

// ResponseContainer wraps the success payload in a list or map.
func (b *MethodBuilder) ResponseContainer(container string) *MethodBuilder {
	b.op().ResponseContainer = container
	return b
}

// ResponseHeader declares a header returned with the success response.
func (b *MethodBuilder) ResponseHeader(name, description string, body any) *MethodBuilder {
	b.op().ResponseHeaders = append(b.op().ResponseHeaders, ResponseHeader{
		Name:        name,
		Description: description,
		Type:        TypeOf(body),
	})
	return b
}

// Request sets an explicit request payload type, overriding the arguments.
func (b *MethodBuilder) Request(body any) *MethodBuilder {
	b.op().Request = TypeOf(body)
	return b
}

// Authorizations appends security scheme names required by the operation.
func (b *MethodBuilder) Authorizations(names ...string) *MethodBuilder {
	b.op().Authorizations = append(b.op().Authorizations, names...)
	return b
}

// Protocols sets the transfer protocols (e.g. "https").
func (b *MethodBuilder) Protocols(protocols ...string) *MethodBuilder {
	b.op().Protocols = append(b.op().Protocols, protocols...)
	return b
}

// Param appends an argument carrying parameter metadata.
func (b *MethodBuilder) Param(meta ParamMeta, body any) *MethodBuilder {
	b.m.Args = append(b.m.Args, &Param{Type: TypeOf(body), Meta: &meta})
	return b
}

// Arg appends a bare argument without metadata.
func (b *MethodBuilder) Arg(body any) *MethodBuilder {
	b.m.Args = append(b.m.Args, &Param{Type: TypeOf(body)})
	return b
}

// Body appends an argument marked as the whole request body.
func (b *MethodBuilder) Body(body any) *MethodBuilder {
	b.m.Args = append(b.m.Args, &Param{Type: TypeOf(body), Body: true})
	return b
}

// RawRequest appends the raw incoming-request handle as an argument.
// Parameters of such methods come from Implicit declarations.
func (b *MethodBuilder) RawRequest() *MethodBuilder {
	b.m.Args = append(b.m.Args, &Param{Type: Request})
	return b
}

// Implicit appends implicit parameter metadata.
func (b *MethodBuilder) Implicit(params ...ImplicitParam) *MethodBuilder {
	b.m.ImplicitParams = append(b.m.ImplicitParams, params...)
	return b
}

// Returns sets the method's declared return type.
func (b *MethodBuilder) Returns(body any) *MethodBuilder {
	b.m.Returns = TypeOf(body)
	return b
}

// SubResource makes the method a locator for the given service.
func (b *MethodBuilder) SubResource(svc *ServiceBuilder) *MethodBuilder {
	b.m.Returns = svc.svc.TypeOf()
	return b
}

// APIResponse appends an entry to the response-code table. Code 0 declares
// the default response; a nil body declares no content.
func (b *MethodBuilder) APIResponse(code int, message string, body any) *MethodBuilder {
	b.m.Responses = append(b.m.Responses, Response{
		Code:    code,
		Message: message,
		Type:    TypeOf(body),
	})
	return b
}

func (b *MethodBuilder) op() *Operation {
	if b.m.Operation == nil {
		b.m.Operation = &Operation{}
	}
	return b.m.Operation
}
