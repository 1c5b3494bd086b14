package swagger

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Version is the specification version written to every document.
const Version = "2.0"

// Document represents the root of a Swagger 2.0 document.
//
// See: https://swagger.io/specification/v2/#swagger-object
type Document struct {
	Swagger             string                     `json:"swagger"`
	Info                Info                       `json:"info"`
	Host                string                     `json:"host,omitempty"`
	BasePath            string                     `json:"basePath,omitempty"`
	Schemes             []string                   `json:"schemes,omitempty"`
	Consumes            []string                   `json:"consumes,omitempty"`
	Produces            []string                   `json:"produces,omitempty"`
	Paths               map[string]*PathItem       `json:"paths"`
	Definitions         map[string]*Schema         `json:"definitions,omitempty"`
	SecurityDefinitions map[string]*SecurityScheme `json:"securityDefinitions,omitempty"`
	Security            []SecurityRequirement      `json:"security,omitempty"`
	Tags                []Tag                      `json:"tags,omitempty"`
	ExternalDocs        *ExternalDocs              `json:"externalDocs,omitempty"`
}

// Info provides metadata about the API.
//
// See: https://swagger.io/specification/v2/#info-object
type Info struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
	Version        string   `json:"version" yaml:"version"`
}

// Contact represents contact information for the API.
//
// See: https://swagger.io/specification/v2/#contact-object
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// License represents license information for the API.
//
// See: https://swagger.io/specification/v2/#license-object
type License struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// PathItem describes the operations available on a single path. Each verb
// has exactly one slot.
//
// See: https://swagger.io/specification/v2/#path-item-object
type PathItem struct {
	Get        *Operation   `json:"get,omitempty"`
	Put        *Operation   `json:"put,omitempty"`
	Post       *Operation   `json:"post,omitempty"`
	Delete     *Operation   `json:"delete,omitempty"`
	Options    *Operation   `json:"options,omitempty"`
	Head       *Operation   `json:"head,omitempty"`
	Patch      *Operation   `json:"patch,omitempty"`
	Parameters []*Parameter `json:"parameters,omitempty"`
}

// Operation describes a single API operation on a path.
//
// See: https://swagger.io/specification/v2/#operation-object
type Operation struct {
	Tags         []string              `json:"tags,omitempty"`
	Summary      string                `json:"summary,omitempty"`
	Description  string                `json:"description,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty"`
	OperationID  string                `json:"operationId,omitempty"`
	Consumes     []string              `json:"consumes,omitempty"`
	Produces     []string              `json:"produces,omitempty"`
	Parameters   []*Parameter          `json:"parameters,omitempty"`
	Responses    map[string]*Response  `json:"responses"`
	Schemes      []string              `json:"schemes,omitempty"`
	Deprecated   bool                  `json:"deprecated,omitempty"`
	Security     []SecurityRequirement `json:"security,omitempty"`
}

// Parameter describes a single operation parameter. Body parameters carry a
// Schema; every other location uses the flat Type/Format/Items fields.
// Parameters with the same name and location must be unique within an
// operation.
//
// See: https://swagger.io/specification/v2/#parameter-object
type Parameter struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`

	// Body location.
	Schema *Schema `json:"schema,omitempty"`

	// Other locations.
	Type             string  `json:"type,omitempty"`
	Format           string  `json:"format,omitempty"`
	AllowEmptyValue  bool    `json:"allowEmptyValue,omitempty"`
	Items            *Schema `json:"items,omitempty"`
	CollectionFormat string  `json:"collectionFormat,omitempty"`
	Default          any     `json:"default,omitempty"`
	Enum             []any   `json:"enum,omitempty"`
	Pattern          string  `json:"pattern,omitempty"`

	// Access is the parameter visibility marker.
	Access string `json:"x-access,omitempty"`
}

// Response describes a single response from an API operation.
// The description field is REQUIRED.
//
// See: https://swagger.io/specification/v2/#response-object
type Response struct {
	Description string             `json:"description"`
	Schema      *Schema            `json:"schema,omitempty"`
	Headers     map[string]*Header `json:"headers,omitempty"`
}

// Header describes a single response header. Headers are limited to
// primitive types and arrays of primitives.
//
// See: https://swagger.io/specification/v2/#header-object
type Header struct {
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type"`
	Format      string  `json:"format,omitempty"`
	Items       *Schema `json:"items,omitempty"`
}

// Schema is a Swagger 2.0 Schema Object: a primitive, an array (Items), a
// map (AdditionalProperties), a reference (Ref) or an object model
// (Properties, Required).
//
// See: https://swagger.io/specification/v2/#schema-object
type Schema struct {
	Ref string `json:"$ref,omitempty"`

	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Example     any    `json:"example,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`

	// Numeric constraints.
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`

	// String constraints.
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Array constraints.
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	// Object constraints.
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`

	Enum []any `json:"enum,omitempty"`

	// Access is the property visibility marker.
	Access string `json:"x-access,omitempty"`

	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// Tag adds metadata to a single tag used by Operation Objects.
//
// See: https://swagger.io/specification/v2/#tag-object
type Tag struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// ExternalDocs allows referencing external documentation.
//
// See: https://swagger.io/specification/v2/#external-documentation-object
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// SecurityScheme defines a security scheme used by operations. The "type"
// field is one of "basic", "apiKey" or "oauth2".
//
// See: https://swagger.io/specification/v2/#security-scheme-object
type SecurityScheme struct {
	Type             string            `json:"type" yaml:"type"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty"`
	Name             string            `json:"name,omitempty" yaml:"name,omitempty"`
	In               string            `json:"in,omitempty" yaml:"in,omitempty"`
	Flow             string            `json:"flow,omitempty" yaml:"flow,omitempty"`
	AuthorizationURL string            `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	Scopes           map[string]string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// SecurityRequirement lists required security schemes for an operation.
// Each key maps to a list of scope names; non-oauth2 schemes use an empty
// list.
//
// See: https://swagger.io/specification/v2/#security-requirement-object
type SecurityRequirement map[string][]string

// MarshalYAML encodes the document with the same keys and ordering as its
// JSON form. JSON is a subset of YAML, so the JSON encoding is re-read as a
// YAML node tree.
func (d *Document) MarshalYAML() (any, error) {
	type plain Document
	data, err := json.Marshal((*plain)(d))
	if err != nil {
		return nil, err
	}
	return jsonNode(data)
}

// JSONToYAML re-encodes a JSON document as block YAML, keeping its key
// order. It is used for documents that only define a JSON encoding, such as
// the OpenAPI 3 conversion.
func JSONToYAML(data []byte) ([]byte, error) {
	node, err := jsonNode(data)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func jsonNode(data []byte) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return node.Content[0], nil
	}
	return &node, nil
}

// blockStyle drops the flow and quoting styles inherited from the JSON
// source so the encoder emits ordinary block YAML.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// JSON returns the indented JSON encoding of the document.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML returns the YAML encoding of the document.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}
