package decl

import "strings"

// Verb is a method-level HTTP verb marker.
type Verb string

const (
	VerbNone    Verb = ""
	VerbGet     Verb = "GET"
	VerbPut     Verb = "PUT"
	VerbPost    Verb = "POST"
	VerbDelete  Verb = "DELETE"
	VerbOptions Verb = "OPTIONS"
	VerbPatch   Verb = "PATCH"
	VerbHead    Verb = "HEAD"
)

// Response container hints.
const (
	ContainerNone = ""
	ContainerList = "list"
	ContainerMap  = "map"
)

// Service is a service declaration: a type exposing routable methods.
type Service struct {
	Name string
	Path string

	// Value is the declaration's own label. When no explicit tags are
	// declared it is used, with slashes removed, as the tag.
	Value string

	Hidden         bool
	Tags           []string
	Authorizations []string
	Methods        []*Method
}

// Method is one method of a service declaration. A method is an exposed
// route only when it has Operation metadata and a resolvable path.
type Method struct {
	Name      string
	Path      string
	Operation *Operation

	Verb       Verb
	CustomVerb string

	// JSONRequest marks methods whose transport decodes a typed JSON request
	// and encodes the return value as the JSON response.
	JSONRequest bool
	Deprecated  bool

	Consumes []string
	Produces []string

	Args           []*Param
	Returns        *Type
	ImplicitParams []ImplicitParam
	Responses      []Response
}

// Operation is the route metadata attached to a method.
type Operation struct {
	Summary  string
	Notes    string
	Nickname string
	Tags     []string

	// HTTPMethod explicitly selects the verb and wins over method markers.
	HTTPMethod string
	Hidden     bool

	Response          *Type
	ResponseContainer string
	ResponseHeaders   []ResponseHeader

	// Request overrides the method arguments as the request payload.
	Request *Type

	Authorizations []string
	Protocols      []string
}

// Param is a declared method or constructor argument.
type Param struct {
	Type *Type
	Meta *ParamMeta

	// Body marks the argument as the whole request body.
	Body bool
}

// ParamMeta is per-parameter metadata.
type ParamMeta struct {
	Name            string
	Description     string
	Required        bool
	Access          string
	AllowableValues string
	DefaultValue    string
}

// ImplicitParam describes a parameter through side-table metadata instead of
// a method argument.
type ImplicitParam struct {
	Name            string
	In              string
	DataType        string
	Required        bool
	DefaultValue    string
	Access          string
	Description     string
	AllowableValues string
}

// Response is an explicit entry of a method's response-code table. Code 0
// declares the default response.
type Response struct {
	Code    int
	Message string
	Type    *Type
	Headers []ResponseHeader
}

// ResponseHeader is a header returned with a response.
type ResponseHeader struct {
	Name        string
	Description string
	Type        *Type
	Container   string
}

// TypeOf returns a KindService descriptor pointing at s, suitable as the
// return type of a sub-resource locator.
func (s *Service) TypeOf() *Type {
	return &Type{Name: s.Name, Kind: KindService, Service: s}
}

// DeclaredTags returns the explicit tags, or the tag derived from Value when
// none are declared.
func (s *Service) DeclaredTags() []string {
	var tags []string
	for _, tag := range s.Tags {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		return tags
	}
	if derived := strings.ReplaceAll(s.Value, "/", ""); derived != "" {
		return []string{derived}
	}
	return nil
}

// SimpleName returns the service name without its package qualifier.
func (s *Service) SimpleName() string {
	if dot := strings.LastIndexByte(s.Name, '.'); dot >= 0 {
		return s.Name[dot+1:]
	}
	return s.Name
}

// IsSubResource reports whether the method returns a service declaration.
func (m *Method) IsSubResource() bool {
	t := m.Returns.Payload()
	return t != nil && t.Kind == KindService && t.Service != nil
}

// BodyArg returns the single body-marked argument, if the method has
// exactly one argument and it is marked as the request body.
func (m *Method) BodyArg() *Param {
	if len(m.Args) == 1 && m.Args[0] != nil && m.Args[0].Body {
		return m.Args[0]
	}
	return nil
}
