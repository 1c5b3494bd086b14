package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vitalvas/specc/decl"
	"github.com/vitalvas/specc/swagger"
)

// Declarations builds the service declarations described by the manifest,
// in manifest order. Services may reference each other as sub-resources
// regardless of the order they are listed in.
func (m *Manifest) Declarations() ([]*decl.Service, error) {
	b := &builder{
		manifest: m,
		models:   make(map[string]*decl.Type),
		services: make(map[string]*decl.Service, len(m.Services)),
	}

	// Declare every service first so locators can point forward.
	out := make([]*decl.Service, 0, len(m.Services))
	for i, s := range m.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("manifest: service #%d has no name", i+1)
		}
		if _, ok := b.services[s.Name]; ok {
			return nil, fmt.Errorf("manifest: duplicate service %q", s.Name)
		}
		svc := &decl.Service{
			Name:           s.Name,
			Path:           s.Path,
			Value:          s.Value,
			Hidden:         s.Hidden,
			Tags:           s.Tags,
			Authorizations: s.Authorizations,
		}
		b.services[s.Name] = svc
		out = append(out, svc)
	}

	for i, s := range m.Services {
		for _, md := range s.Methods {
			method, err := b.method(md)
			if err != nil {
				return nil, fmt.Errorf("manifest: service %s method %s: %w", s.Name, md.Name, err)
			}
			out[i].Methods = append(out[i].Methods, method)
		}
	}
	return out, nil
}

type builder struct {
	manifest *Manifest
	models   map[string]*decl.Type
	services map[string]*decl.Service
}

func (b *builder) method(md Method) (*decl.Method, error) {
	if md.Name == "" {
		return nil, errors.New("method has no name")
	}

	out := &decl.Method{
		Name:        md.Name,
		Path:        md.Path,
		Verb:        decl.Verb(strings.ToUpper(md.Verb)),
		CustomVerb:  md.CustomVerb,
		JSONRequest: md.JSON,
		Deprecated:  md.Deprecated,
		Consumes:    md.Consumes,
		Produces:    md.Produces,
	}

	op := &decl.Operation{
		Summary:           md.Summary,
		Notes:             md.Notes,
		Nickname:          md.Nickname,
		Tags:              md.Tags,
		HTTPMethod:        md.HTTPMethod,
		Hidden:            md.Hidden,
		ResponseContainer: md.ResponseContainer,
		Authorizations:    md.Security,
		Protocols:         md.Protocols,
	}
	var err error
	if op.Response, err = b.typeOf(md.Response); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	if op.Request, err = b.typeOf(md.Request); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if op.ResponseHeaders, err = b.headers(md.ResponseHeaders); err != nil {
		return nil, err
	}
	out.Operation = op

	if md.RawRequest {
		out.Args = append(out.Args, &decl.Param{Type: decl.Request})
	}
	for _, p := range md.Params {
		param, err := b.param(p)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, param)
	}

	for _, ip := range md.ImplicitParams {
		out.ImplicitParams = append(out.ImplicitParams, decl.ImplicitParam{
			Name:            ip.Name,
			In:              ip.In,
			DataType:        ip.DataType,
			Required:        ip.Required,
			DefaultValue:    ip.Default,
			Access:          ip.Access,
			Description:     ip.Description,
			AllowableValues: ip.AllowableValues,
		})
	}

	switch {
	case md.SubResource != "" && md.Returns != "":
		return nil, errors.New("subResource and returns are mutually exclusive")
	case md.SubResource != "":
		child, ok := b.services[md.SubResource]
		if !ok {
			return nil, fmt.Errorf("unknown sub-resource service %q", md.SubResource)
		}
		out.Returns = child.TypeOf()
	default:
		if out.Returns, err = b.typeOf(md.Returns); err != nil {
			return nil, fmt.Errorf("returns: %w", err)
		}
	}

	for _, r := range md.Responses {
		typ, err := b.typeOf(r.Type)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", r.Code, err)
		}
		headers, err := b.headers(r.Headers)
		if err != nil {
			return nil, err
		}
		out.Responses = append(out.Responses, decl.Response{
			Code:    r.Code,
			Message: r.Message,
			Type:    typ,
			Headers: headers,
		})
	}

	return out, nil
}

func (b *builder) param(p Param) (*decl.Param, error) {
	typ, err := b.typeOf(p.Type)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", p.Name, err)
	}
	out := &decl.Param{Type: typ, Body: p.Body}
	if p.Name != "" {
		out.Meta = paramMeta(p, p.Name)
	}
	return out, nil
}

func paramMeta(p Param, fallbackName string) *decl.ParamMeta {
	name := p.Name
	if name == "" {
		name = fallbackName
	}
	return &decl.ParamMeta{
		Name:            name,
		Description:     p.Description,
		Required:        p.Required,
		Access:          p.Access,
		AllowableValues: p.AllowableValues,
		DefaultValue:    p.Default,
	}
}

func (b *builder) headers(in []Header) ([]decl.ResponseHeader, error) {
	var out []decl.ResponseHeader
	for _, h := range in {
		typ, err := b.typeOf(h.Type)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", h.Name, err)
		}
		out = append(out, decl.ResponseHeader{
			Name:        h.Name,
			Description: h.Description,
			Type:        typ,
			Container:   h.Container,
		})
	}
	return out, nil
}

// typeOf resolves a type expression. Models are built on first use and
// cached, so self-referencing models terminate.
func (b *builder) typeOf(expr string) (*decl.Type, error) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "" || expr == "void":
		return decl.Void, nil
	case expr == "any":
		return &decl.Type{Kind: decl.KindAny}, nil
	}

	if inner, ok := strings.CutPrefix(expr, "[]"); ok {
		elem, err := b.typeOf(inner)
		if err != nil {
			return nil, err
		}
		return decl.ArrayOf(elem), nil
	}
	if inner, ok := strings.CutPrefix(expr, "map[string]"); ok {
		elem, err := b.typeOf(inner)
		if err != nil {
			return nil, err
		}
		return decl.MapOf(elem), nil
	}
	if inner, ok := wrapped(expr, "Future"); ok {
		elem, err := b.typeOf(inner)
		if err != nil {
			return nil, err
		}
		return decl.FutureOf(elem), nil
	}
	if inner, ok := wrapped(expr, "Token"); ok {
		elem, err := b.typeOf(inner)
		if err != nil {
			return nil, err
		}
		return decl.TokenOf(expr, elem), nil
	}

	if t, ok := b.models[expr]; ok {
		return t, nil
	}
	if model, ok := b.manifest.Models[expr]; ok {
		return b.model(expr, model)
	}
	if _, ok := b.manifest.ExternalTypes[expr]; ok {
		return decl.Object(expr), nil
	}
	if p, ok := swagger.PrimitiveByName(expr); ok {
		return primitive(p), nil
	}
	if svc, ok := b.services[expr]; ok {
		return svc.TypeOf(), nil
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}

func (b *builder) model(name string, model Model) (*decl.Type, error) {
	out := decl.Object(name)
	b.models[name] = out

	params := make([]*decl.Param, 0, len(model.Fields))
	for _, f := range model.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("model %s: field has no name", name)
		}
		ft, err := b.typeOf(f.Type)
		if err != nil {
			return nil, fmt.Errorf("model %s field %s: %w", name, f.Name, err)
		}
		out.Fields = append(out.Fields, decl.Field{
			Name:        f.Name,
			Type:        ft,
			Required:    f.Required,
			Description: f.Description,
			Tag:         f.Constraints,
		})

		param := &decl.Param{Type: ft}
		if f.Param != nil {
			param.Meta = paramMeta(*f.Param, f.Name)
			param.Body = f.Param.Body
		}
		params = append(params, param)
	}
	out.Constructors = []decl.Constructor{{Creator: true, Params: params}}
	return out, nil
}

// wrapped matches "Name[inner]".
func wrapped(expr, name string) (string, bool) {
	rest, ok := strings.CutPrefix(expr, name+"[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return "", false
	}
	return rest[:len(rest)-1], true
}

func primitive(p swagger.Primitive) *decl.Type {
	var kind decl.Kind
	switch p.Type {
	case "string":
		kind = decl.KindString
	case "integer":
		kind = decl.KindInteger
	case "number":
		kind = decl.KindNumber
	case "boolean":
		kind = decl.KindBoolean
	case "file":
		kind = decl.KindFile
	default:
		kind = decl.KindAny
	}
	return decl.Primitive(kind, p.Format)
}
