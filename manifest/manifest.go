// Package manifest loads service declarations from YAML files.
//
// A manifest lists named object models and services. Types are written as
// expressions:
//
//	string, long, date-time, ...   primitive names (see swagger.PrimitiveByName)
//	any                            free-form object
//	pets.Pet                       a model or external type declared in the manifest
//	[]pets.Pet                     array
//	map[string]pets.Pet            string-keyed map
//	Future[pets.Pet]               asynchronous result, documented as its payload
//	Token[[]pets.Pet]              typed token wrapping its element
//
// Example:
//
//	info:
//	  title: Petstore
//	  version: 1.0.0
//	models:
//	  pets.Pet:
//	    fields:
//	      - {name: id, type: long, required: true}
//	      - {name: name, type: string, constraints: "minLength=1"}
//	services:
//	  - name: pets.Pets
//	    path: /pets
//	    tags: [pets]
//	    methods:
//	      - name: list
//	        verb: GET
//	        response: "[]pets.Pet"
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/specc/swagger"
)

// Manifest is the root of a declaration manifest.
type Manifest struct {
	Info                swagger.Info                       `yaml:"info"`
	Host                string                             `yaml:"host,omitempty"`
	BasePath            string                             `yaml:"basePath,omitempty"`
	Schemes             []string                           `yaml:"schemes,omitempty"`
	ExternalTypes       map[string]swagger.Primitive       `yaml:"externalTypes,omitempty"`
	SecurityDefinitions map[string]*swagger.SecurityScheme `yaml:"securityDefinitions,omitempty"`
	Models              map[string]Model                   `yaml:"models,omitempty"`
	Services            []Service                          `yaml:"services"`
}

// Model declares a named object type.
type Model struct {
	Fields []Field `yaml:"fields"`
}

// Field is one model property. A field with a param block also becomes a
// parameter of the model's creator when the model is used as a request.
type Field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required,omitempty"`
	Description string `yaml:"description,omitempty"`
	Constraints string `yaml:"constraints,omitempty"`
	Param       *Param `yaml:"param,omitempty"`
}

// Service declares a service and its methods.
type Service struct {
	Name           string   `yaml:"name"`
	Path           string   `yaml:"path,omitempty"`
	Value          string   `yaml:"value,omitempty"`
	Hidden         bool     `yaml:"hidden,omitempty"`
	Tags           []string `yaml:"tags,omitempty"`
	Authorizations []string `yaml:"authorizations,omitempty"`
	Methods        []Method `yaml:"methods"`
}

// Method declares one exposed method of a service.
type Method struct {
	Name        string   `yaml:"name"`
	Path        string   `yaml:"path,omitempty"`
	Verb        string   `yaml:"verb,omitempty"`
	CustomVerb  string   `yaml:"customVerb,omitempty"`
	HTTPMethod  string   `yaml:"httpMethod,omitempty"`
	JSON        bool     `yaml:"json,omitempty"`
	Deprecated  bool     `yaml:"deprecated,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty"`
	Consumes    []string `yaml:"consumes,omitempty"`
	Produces    []string `yaml:"produces,omitempty"`
	Summary     string   `yaml:"summary,omitempty"`
	Notes       string   `yaml:"notes,omitempty"`
	Nickname    string   `yaml:"nickname,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Protocols   []string `yaml:"protocols,omitempty"`
	Security    []string `yaml:"authorizations,omitempty"`
	SubResource string   `yaml:"subResource,omitempty"`

	Response          string   `yaml:"response,omitempty"`
	ResponseContainer string   `yaml:"responseContainer,omitempty"`
	ResponseHeaders   []Header `yaml:"responseHeaders,omitempty"`
	Request           string   `yaml:"request,omitempty"`
	Returns           string   `yaml:"returns,omitempty"`

	RawRequest     bool            `yaml:"rawRequest,omitempty"`
	Params         []Param         `yaml:"params,omitempty"`
	ImplicitParams []ImplicitParam `yaml:"implicitParams,omitempty"`
	Responses      []Response      `yaml:"responses,omitempty"`
}

// Param is a method argument. Named arguments carry parameter metadata; a
// body argument stands for the whole request body.
type Param struct {
	Name            string `yaml:"name,omitempty"`
	Type            string `yaml:"type,omitempty"`
	Required        bool   `yaml:"required,omitempty"`
	Description     string `yaml:"description,omitempty"`
	Access          string `yaml:"access,omitempty"`
	AllowableValues string `yaml:"allowableValues,omitempty"`
	Default         string `yaml:"default,omitempty"`
	Body            bool   `yaml:"body,omitempty"`
}

// ImplicitParam is a parameter read from the raw request.
type ImplicitParam struct {
	Name            string `yaml:"name"`
	In              string `yaml:"in"`
	DataType        string `yaml:"dataType,omitempty"`
	Required        bool   `yaml:"required,omitempty"`
	Default         string `yaml:"default,omitempty"`
	Access          string `yaml:"access,omitempty"`
	Description     string `yaml:"description,omitempty"`
	AllowableValues string `yaml:"allowableValues,omitempty"`
}

// Response is an entry of a method's response-code table. Code 0 is the
// default response.
type Response struct {
	Code    int      `yaml:"code"`
	Message string   `yaml:"message,omitempty"`
	Type    string   `yaml:"type,omitempty"`
	Headers []Header `yaml:"headers,omitempty"`
}

// Header is a response header.
type Header struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type"`
	Container   string `yaml:"container,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Options returns the reader options declared by the manifest.
func (m *Manifest) Options() []swagger.Option {
	var opts []swagger.Option
	if m.Info.Title != "" || m.Info.Version != "" {
		opts = append(opts, swagger.WithInfo(m.Info))
	}
	if m.Host != "" {
		opts = append(opts, swagger.WithHost(m.Host))
	}
	if m.BasePath != "" {
		opts = append(opts, swagger.WithBasePath(m.BasePath))
	}
	if len(m.Schemes) > 0 {
		opts = append(opts, swagger.WithSchemes(m.Schemes...))
	}
	if len(m.ExternalTypes) > 0 {
		opts = append(opts, swagger.WithExternalTypes(m.ExternalTypes))
	}
	for name, scheme := range m.SecurityDefinitions {
		opts = append(opts, swagger.WithSecurityDefinition(name, scheme))
	}
	return opts
}

// Compile builds the declared services and compiles them into a document.
// Extra options are applied after the manifest's own.
func (m *Manifest) Compile(opts ...swagger.Option) (*swagger.Document, error) {
	services, err := m.Declarations()
	if err != nil {
		return nil, err
	}
	return swagger.Compile(services, append(m.Options(), opts...)...)
}
