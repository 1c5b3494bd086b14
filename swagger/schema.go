package swagger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vitalvas/specc/decl"
)

// Resolver maps type descriptors to schemas and registers named object
// models in a document. Resolving the same type twice is idempotent and
// self-referencing models terminate through the visited set.
//
// See: https://swagger.io/specification/v2/#schema-object
// See: https://swagger.io/specification/v2/#definitions-object
type Resolver struct {
	doc       *Document
	externals map[string]Primitive
	logger    *zap.Logger
	visited   map[*decl.Type]string
}

// NewResolver creates a resolver writing models into doc. The externals
// table maps qualified type names to primitives and takes precedence over
// the descriptor's own shape; it is copied and never changes afterwards.
func NewResolver(doc *Document, externals map[string]Primitive, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := defaultExternalTypes()
	for name, p := range externals {
		table[name] = p
	}
	return &Resolver{
		doc:       doc,
		externals: table,
		logger:    logger,
		visited:   make(map[*decl.Type]string),
	}
}

// ResolveProperty returns the schema for t. Named object types are
// registered in the document and referenced; everything else is inline.
// Void yields nil.
func (r *Resolver) ResolveProperty(t *decl.Type) *Schema {
	if t.IsVoid() {
		return nil
	}
	if p, ok := r.externals[t.Name]; ok && t.Name != "" {
		return &Schema{Type: p.Type, Format: p.Format}
	}

	switch t.Kind {
	case decl.KindFuture, decl.KindToken:
		if t.Elem == nil {
			return r.unresolvable(t)
		}
		return r.ResolveProperty(t.Elem)

	case decl.KindString, decl.KindInteger, decl.KindNumber, decl.KindBoolean:
		return &Schema{Type: t.Kind.String(), Format: t.Format}

	case decl.KindFile:
		return &Schema{Type: "file"}

	case decl.KindAny:
		return &Schema{Type: "object"}

	case decl.KindArray:
		return &Schema{Type: "array", Items: r.elemSchema(t)}

	case decl.KindMap:
		return &Schema{Type: "object", AdditionalProperties: r.elemSchema(t)}

	case decl.KindObject:
		if t.Name == "" {
			return r.objectSchema(t)
		}
		return refSchema(r.register(t))
	}

	return r.unresolvable(t)
}

// ResolveModel registers the named model for t and returns it together
// with every model reachable from it. Asynchronous and token wrappers are
// unwrapped first. Types without a named model yield nil.
func (r *Resolver) ResolveModel(t *decl.Type) map[string]*Schema {
	t = unwrap(t)
	if t.IsVoid() || t.Kind != decl.KindObject || t.Name == "" {
		return nil
	}
	if _, ok := r.externals[t.Name]; ok {
		return nil
	}
	return r.doc.reachable(r.register(t))
}

// IsPrimitive reports whether t resolves to an inline primitive, array or
// file schema.
func (r *Resolver) IsPrimitive(t *decl.Type) bool {
	t = unwrap(t)
	if t.IsVoid() {
		return false
	}
	if _, ok := r.externals[t.Name]; ok && t.Name != "" {
		return true
	}
	switch t.Kind {
	case decl.KindString, decl.KindInteger, decl.KindNumber, decl.KindBoolean, decl.KindArray, decl.KindFile:
		return true
	}
	return false
}

func (r *Resolver) register(t *decl.Type) string {
	if name, ok := r.visited[t]; ok {
		return name
	}
	name := t.Name
	r.visited[t] = name
	r.doc.AddDefinition(name, r.objectSchema(t))
	return name
}

func (r *Resolver) elemSchema(t *decl.Type) *Schema {
	if t.Elem == nil {
		return r.unresolvable(t)
	}
	if s := r.ResolveProperty(t.Elem); s != nil {
		return s
	}
	return &Schema{}
}

// objectSchema builds an object model from the descriptor fields.
func (r *Resolver) objectSchema(t *decl.Type) *Schema {
	schema := &Schema{Type: "object"}
	for _, f := range t.Fields {
		fs := r.ResolveProperty(f.Type)
		if fs == nil {
			continue
		}
		if fs.Ref == "" {
			if f.Description != "" {
				fs.Description = f.Description
			}
			applyConstraintTag(fs, f.Tag)
		}
		if schema.Properties == nil {
			schema.Properties = make(map[string]*Schema)
		}
		schema.Properties[f.Name] = fs
		if f.Required {
			schema.Required = append(schema.Required, f.Name)
		}
	}
	return schema
}

func (r *Resolver) unresolvable(t *decl.Type) *Schema {
	err := &Error{Kind: UnresolvableType, Message: "no schema kind for " + describe(t)}
	r.logger.Warn("Using opaque schema for unresolvable type", zap.String("type", t.Name), zap.Stringer("kind", t.Kind), zap.Error(err))
	return &Schema{}
}

func describe(t *decl.Type) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String() + " type"
}

// unwrap strips asynchronous-result and typed-token wrappers.
func unwrap(t *decl.Type) *decl.Type {
	for t != nil && (t.Kind == decl.KindFuture || t.Kind == decl.KindToken) {
		t = t.Elem
	}
	return t
}

// applyConstraintTag parses an `openapi` struct tag and applies its
// constraints to the schema.
//
//	`openapi:"minimum=0,maximum=150,format=email,enum=a|b"`
//
// See: https://swagger.io/specification/v2/#schema-object
func applyConstraintTag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "description":
			schema.Description = value
		case "title":
			schema.Title = value
		case "example":
			schema.Example = typedValue(schema.Type, value)
		case "default":
			schema.Default = typedValue(schema.Type, value)
		case "format":
			schema.Format = value
		case "pattern":
			schema.Pattern = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
			}
		case "exclusiveMinimum":
			// Swagger 2.0 expresses exclusivity as a flag on the bound.
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
				schema.ExclusiveMinimum = true
			}
		case "exclusiveMaximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
				schema.ExclusiveMaximum = true
			}
		case "multipleOf":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.MultipleOf = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxLength = &v
			}
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxItems = &v
			}
		case "uniqueItems":
			schema.UniqueItems = true
		case "minProperties":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinProperties = &v
			}
		case "maxProperties":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxProperties = &v
			}
		case "readOnly":
			schema.ReadOnly = true
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = typedValue(schema.Type, v)
			}
		}
	}
}
