package swagger

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/specc/decl"
)

// classify turns a method's declared arguments into operation parameters.
//
// The candidate list comes from, in order: the explicit request type of the
// operation, the single body-marked argument, or the method arguments. A
// typed-token request is always a single array body. Candidates carrying
// metadata become form parameters when all of them are simple, or one body
// object model otherwise. A leading raw request handle defers to the
// implicit parameter table.
func (r *Reader) classify(svc *decl.Service, m *decl.Method) ([]*Parameter, error) {
	identifier := methodIdentifier(svc, m)

	var (
		candidates []*decl.Param
		name       string
	)
	switch req := m.Operation.Request; {
	case !req.IsVoid():
		if req.Kind == decl.KindToken {
			return r.tokenBody(svc, m, identifier, req)
		}
		params, err := creatorParams(svc, m, req)
		if err != nil {
			return nil, err
		}
		candidates, name = params, req.Name

	case m.BodyArg() != nil:
		body := m.BodyArg().Type
		params, err := creatorParams(svc, m, body)
		if err != nil {
			return nil, err
		}
		candidates, name = params, body.Name

	default:
		candidates, name = m.Args, identifier
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	if name == "" {
		name = identifier
	}

	first := candidates[0]
	switch {
	case first != nil && first.Meta != nil:
		return r.metaParams(svc, m, name, candidates)
	case first != nil && first.Type != nil && first.Type.Kind == decl.KindRequest:
		return r.implicitParams(svc, m, identifier)
	}
	return nil, &Error{
		Kind:    InvalidDeclaration,
		Service: svc.Name,
		Method:  m.Name,
		Message: "first argument carries no parameter metadata and is not the raw request",
	}
}

// methodIdentifier names models synthesized for a method.
func methodIdentifier(svc *decl.Service, m *decl.Method) string {
	return svc.Name + "_" + m.Name
}

// creatorParams returns the parameters of the single creator constructor
// of a request body type.
func creatorParams(svc *decl.Service, m *decl.Method, t *decl.Type) ([]*decl.Param, error) {
	creators := t.Creators()
	switch len(creators) {
	case 0:
		return nil, &Error{
			Kind:    InvalidDeclaration,
			Service: svc.Name,
			Method:  m.Name,
			Message: fmt.Sprintf("%s has no creator constructor", describe(t)),
		}
	case 1:
	default:
		return nil, &Error{
			Kind:    InvalidDeclaration,
			Service: svc.Name,
			Method:  m.Name,
			Message: fmt.Sprintf("%s has %d creator constructors, expected one", describe(t), len(creators)),
		}
	}

	params := creators[0].Params
	if len(params) > 0 && (params[0] == nil || params[0].Meta == nil) {
		return nil, &Error{
			Kind:    InvalidDeclaration,
			Service: svc.Name,
			Method:  m.Name,
			Message: fmt.Sprintf("%s creator parameters carry no parameter metadata", describe(t)),
		}
	}
	return params, nil
}

// tokenBody emits a single required body parameter referencing an array
// model named after the method.
func (r *Reader) tokenBody(svc *decl.Service, m *decl.Method, identifier string, req *decl.Type) ([]*Parameter, error) {
	prop := r.resolver.ResolveProperty(req)
	if prop == nil || prop.Type != "array" {
		return nil, &Error{
			Kind:    UnsupportedShape,
			Service: svc.Name,
			Method:  m.Name,
			Message: fmt.Sprintf("typed request %s must wrap an array", describe(req)),
		}
	}

	r.doc.AddDefinition(identifier, &Schema{Type: "array", Items: prop.Items})
	return []*Parameter{{
		Name:     identifier,
		In:       "body",
		Required: true,
		Schema:   refSchema(identifier),
	}}, nil
}

// metaParams emits form parameters when every candidate is simple and a
// single body object model otherwise.
func (r *Reader) metaParams(svc *decl.Service, m *decl.Method, name string, candidates []*decl.Param) ([]*Parameter, error) {
	props := make([]*Schema, len(candidates))
	complex := false
	for i, c := range candidates {
		if c == nil {
			continue
		}
		props[i] = r.resolver.ResolveProperty(c.Type)
		if !isSimpleSchema(props[i]) {
			complex = true
		}
	}

	for _, c := range candidates {
		if c != nil && c.Meta != nil && c.Meta.Name == "" {
			return nil, &Error{
				Kind:    InvalidDeclaration,
				Service: svc.Name,
				Method:  m.Name,
				Message: "parameter metadata has no name",
			}
		}
	}

	if !complex {
		return r.formParams(candidates, props), nil
	}
	return r.bodyModel(name, candidates, props), nil
}

func isSimpleSchema(s *Schema) bool {
	if s == nil {
		return false
	}
	if isSimpleType(s.Type) {
		return true
	}
	return s.Type == "array" && s.Items != nil && isSimpleType(s.Items.Type)
}

func (r *Reader) formParams(candidates []*decl.Param, props []*Schema) []*Parameter {
	var out []*Parameter
	for i, c := range candidates {
		if c == nil || c.Meta == nil {
			continue
		}
		prop := props[i]
		p := &Parameter{
			Name:        c.Meta.Name,
			In:          "formData",
			Description: c.Meta.Description,
			Required:    c.Meta.Required,
			Type:        prop.Type,
			Format:      prop.Format,
			Items:       prop.Items,
			Access:      c.Meta.Access,
		}
		if prop.Type == "array" {
			p.CollectionFormat = "multi"
		}
		if c.Meta.DefaultValue != "" {
			p.Default = typedValue(p.Type, c.Meta.DefaultValue)
		}
		p.Enum = r.allowableValues(p.Type, c.Meta.AllowableValues)
		out = append(out, p)
	}
	return out
}

// bodyModel folds the candidates into one object model registered under
// name, with one property per candidate.
func (r *Reader) bodyModel(name string, candidates []*decl.Param, props []*Schema) []*Parameter {
	model := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	for i, c := range candidates {
		if c == nil || c.Meta == nil || props[i] == nil {
			continue
		}
		prop := props[i]
		if prop.Ref == "" {
			if c.Meta.Description != "" {
				prop.Description = c.Meta.Description
			}
			prop.Access = c.Meta.Access
			if c.Meta.DefaultValue != "" {
				prop.Default = typedValue(prop.Type, c.Meta.DefaultValue)
			}
			if enum := r.allowableValues(prop.Type, c.Meta.AllowableValues); enum != nil {
				prop.Enum = enum
			}
		}
		model.Properties[c.Meta.Name] = prop
		if c.Meta.Required {
			model.Required = append(model.Required, c.Meta.Name)
		}
	}

	r.doc.AddDefinition(name, model)
	return []*Parameter{{
		Name:     name,
		In:       "body",
		Required: true,
		Schema:   refSchema(name),
	}}
}

// implicitParams reads parameters from the implicit parameter table. An
// entry typed "object" folds the whole table into one body model.
func (r *Reader) implicitParams(svc *decl.Service, m *decl.Method, identifier string) ([]*Parameter, error) {
	entries := m.ImplicitParams
	if len(entries) == 0 {
		return nil, nil
	}

	for _, e := range entries {
		if e.Name == "" {
			return nil, &Error{
				Kind:    InvalidDeclaration,
				Service: svc.Name,
				Method:  m.Name,
				Message: "implicit parameter has no name",
			}
		}
	}

	folded := slices.ContainsFunc(entries, func(e decl.ImplicitParam) bool {
		return strings.EqualFold(e.DataType, "object")
	})
	if folded {
		model := &Schema{Type: "object", Properties: make(map[string]*Schema, len(entries))}
		for _, e := range entries {
			prim := r.implicitPrimitive(e)
			prop := &Schema{Type: prim.Type, Format: prim.Format, Access: e.Access, Description: e.Description}
			if e.DefaultValue != "" {
				prop.Default = typedValue(prim.Type, e.DefaultValue)
			}
			model.Properties[e.Name] = prop
			if e.Required {
				model.Required = append(model.Required, e.Name)
			}
		}
		r.doc.AddDefinition(identifier, model)
		return []*Parameter{{Name: identifier, In: "body", Schema: refSchema(identifier)}}, nil
	}

	var out []*Parameter
	for _, e := range entries {
		p, err := r.implicitParam(svc, m, e)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Reader) implicitParam(svc *decl.Service, m *decl.Method, e decl.ImplicitParam) (*Parameter, error) {
	var in string
	switch strings.ToLower(e.In) {
	case "path":
		in = "path"
	case "query":
		in = "query"
	case "form", "formdata":
		in = "formData"
	case "header":
		in = "header"
		if !httpguts.ValidHeaderFieldName(e.Name) {
			return nil, &Error{
				Kind:    InvalidDeclaration,
				Service: svc.Name,
				Method:  m.Name,
				Message: fmt.Sprintf("invalid header parameter name %q", e.Name),
			}
		}
	case "body":
		r.logger.Warn("Skipping body implicit parameter, not supported",
			zap.String("service", svc.Name), zap.String("method", m.Name), zap.String("param", e.Name))
		return nil, nil
	default:
		r.logger.Warn("Skipping implicit parameter with unknown location",
			zap.String("service", svc.Name), zap.String("method", m.Name), zap.String("param", e.Name), zap.String("in", e.In))
		return nil, nil
	}

	prim := r.implicitPrimitive(e)
	p := &Parameter{
		Name:        e.Name,
		In:          in,
		Description: e.Description,
		Required:    e.Required || in == "path",
		Type:        prim.Type,
		Format:      prim.Format,
		Access:      e.Access,
	}
	if e.DefaultValue != "" {
		p.Default = typedValue(p.Type, e.DefaultValue)
	}
	p.Enum = r.allowableValues(p.Type, e.AllowableValues)
	return p, nil
}

// implicitPrimitive maps an implicit parameter's type name, defaulting to
// string.
func (r *Reader) implicitPrimitive(e decl.ImplicitParam) Primitive {
	if e.DataType == "" {
		return Primitive{Type: "string"}
	}
	if p, ok := PrimitiveByName(e.DataType); ok {
		return p
	}
	if p, ok := r.resolver.externals[e.DataType]; ok {
		return p
	}
	r.logger.Debug("Unknown implicit parameter type, using string", zap.String("param", e.Name), zap.String("type", e.DataType))
	return Primitive{Type: "string"}
}

// allowableValues parses a comma-separated value list into an enum. The
// range form ("range[1, 5]") is recognized and left unapplied.
func (r *Reader) allowableValues(typ, values string) []any {
	values = strings.TrimSpace(values)
	if values == "" {
		return nil
	}
	if strings.HasPrefix(values, "range") {
		r.logger.Debug("Ignoring range allowable values", zap.String("values", values))
		return nil
	}

	var out []any
	for v := range strings.SplitSeq(values, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, typedValue(typ, v))
		}
	}
	return out
}
