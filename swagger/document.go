package swagger

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// DefinitionPrefix is the reference prefix of the named model registry.
const DefinitionPrefix = "#/definitions/"

// Verbs lists the operation slots of a path item in document order.
var Verbs = []string{"get", "put", "post", "delete", "options", "head", "patch"}

// NewDocument creates an empty document with the given API info.
func NewDocument(info Info) *Document {
	return &Document{
		Swagger:     Version,
		Info:        info,
		Paths:       make(map[string]*PathItem),
		Definitions: make(map[string]*Schema),
	}
}

// AddOperation stores op at (path, verb). An occupied slot is overwritten
// and reported as replaced.
func (d *Document) AddOperation(path, verb string, op *Operation) (bool, error) {
	if d.Paths == nil {
		d.Paths = make(map[string]*PathItem)
	}
	item, ok := d.Paths[path]
	if !ok {
		item = &PathItem{}
	}

	slot := item.slot(strings.ToLower(verb))
	if slot == nil {
		return false, fmt.Errorf("unsupported HTTP verb %q", verb)
	}

	d.Paths[path] = item
	replaced := *slot != nil
	*slot = op
	return replaced, nil
}

// Operation returns the operation stored at (path, verb), or nil.
func (d *Document) Operation(path, verb string) *Operation {
	item, ok := d.Paths[path]
	if !ok {
		return nil
	}
	if slot := item.slot(strings.ToLower(verb)); slot != nil {
		return *slot
	}
	return nil
}

// Operations calls fn for every operation in path then verb order.
func (d *Document) Operations(fn func(path, verb string, op *Operation)) {
	for _, path := range d.PathNames() {
		item := d.Paths[path]
		for _, verb := range Verbs {
			if op := *item.slot(verb); op != nil {
				fn(path, verb, op)
			}
		}
	}
}

// PathNames returns the paths of the document in sorted order.
func (d *Document) PathNames() []string {
	return slices.Sorted(maps.Keys(d.Paths))
}

// AddDefinition registers a named model. Registering an identical shape
// again is a no-op. A different shape under the same name is merged with
// the existing entry: properties are united with the newer definition
// winning per property, and required names are united. A newer object
// without properties keeps the fields already collected. Non-object shapes
// are replaced by the newer definition.
func (d *Document) AddDefinition(name string, schema *Schema) {
	if schema == nil {
		return
	}
	if d.Definitions == nil {
		d.Definitions = make(map[string]*Schema)
	}

	existing, ok := d.Definitions[name]
	if !ok || existing == schema {
		d.Definitions[name] = schema
		return
	}
	if reflect.DeepEqual(existing, schema) {
		return
	}
	d.Definitions[name] = mergeModels(existing, schema)
}

// Definition returns the named model, or nil.
func (d *Document) Definition(name string) *Schema {
	return d.Definitions[name]
}

func mergeModels(prev, next *Schema) *Schema {
	if prev.Properties == nil || (next.Type != "" && next.Type != "object") {
		return next
	}

	merged := *next
	if merged.Type == "" {
		merged.Type = prev.Type
	}
	merged.Properties = make(map[string]*Schema, len(prev.Properties)+len(next.Properties))
	maps.Copy(merged.Properties, prev.Properties)
	maps.Copy(merged.Properties, next.Properties)

	merged.Required = slices.Clone(prev.Required)
	for _, name := range next.Required {
		if !slices.Contains(merged.Required, name) {
			merged.Required = append(merged.Required, name)
		}
	}
	return &merged
}

// AddTag registers a tag name once. Tags are kept sorted by name.
func (d *Document) AddTag(name string) {
	if name == "" {
		return
	}
	i, found := sort.Find(len(d.Tags), func(i int) int {
		return strings.Compare(name, d.Tags[i].Name)
	})
	if found {
		return
	}
	d.Tags = slices.Insert(d.Tags, i, Tag{Name: name})
}

// AddSecurity registers a security scheme name. Names without a predeclared
// definition get an API key scheme read from the header of the same name.
func (d *Document) AddSecurity(name string) {
	if name == "" {
		return
	}
	if d.SecurityDefinitions == nil {
		d.SecurityDefinitions = make(map[string]*SecurityScheme)
	}
	if _, ok := d.SecurityDefinitions[name]; ok {
		return
	}
	d.SecurityDefinitions[name] = &SecurityScheme{
		Type: "apiKey",
		Name: name,
		In:   "header",
	}
}

// SecuritySchemes returns the registered security scheme names in sorted
// order.
func (d *Document) SecuritySchemes() []string {
	return slices.Sorted(maps.Keys(d.SecurityDefinitions))
}

// Check verifies that the document is complete: every reference resolves
// to a registered model and every path is normalized.
func (d *Document) Check() error {
	var errs []error

	for _, path := range d.PathNames() {
		if !validPath(path) {
			errs = append(errs, fmt.Errorf("path %q is not normalized", path))
		}
	}

	d.walkSchemas(func(where string, s *Schema) {
		if s.Ref == "" {
			return
		}
		name, ok := strings.CutPrefix(s.Ref, DefinitionPrefix)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unsupported reference %q", where, s.Ref))
			return
		}
		if _, ok := d.Definitions[name]; !ok {
			errs = append(errs, fmt.Errorf("%s: dangling reference %q", where, s.Ref))
		}
	})

	d.Operations(func(path, verb string, op *Operation) {
		for _, req := range op.Security {
			for name := range req {
				if _, ok := d.SecurityDefinitions[name]; !ok {
					errs = append(errs, fmt.Errorf("%s %s: undefined security scheme %q", verb, path, name))
				}
			}
		}
	})

	return errors.Join(errs...)
}

// walkSchemas visits every schema reachable from definitions, parameters,
// responses and headers.
func (d *Document) walkSchemas(fn func(where string, s *Schema)) {
	for _, name := range slices.Sorted(maps.Keys(d.Definitions)) {
		walkSchema("definition "+name, d.Definitions[name], fn)
	}

	d.Operations(func(path, verb string, op *Operation) {
		where := verb + " " + path
		for _, p := range op.Parameters {
			walkSchema(where+" parameter "+p.Name, p.Schema, fn)
			walkSchema(where+" parameter "+p.Name, p.Items, fn)
		}
		for _, code := range slices.Sorted(maps.Keys(op.Responses)) {
			resp := op.Responses[code]
			walkSchema(where+" response "+code, resp.Schema, fn)
			for hname, h := range resp.Headers {
				walkSchema(where+" response "+code+" header "+hname, h.Items, fn)
			}
		}
	})
}

func walkSchema(where string, s *Schema, fn func(string, *Schema)) {
	if s == nil {
		return
	}
	fn(where, s)
	walkSchema(where, s.Items, fn)
	walkSchema(where, s.AdditionalProperties, fn)
	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		walkSchema(where+"."+name, s.Properties[name], fn)
	}
}

// reachable returns the named models reachable from name, including itself.
func (d *Document) reachable(name string) map[string]*Schema {
	out := make(map[string]*Schema)
	var visit func(string)
	visit = func(n string) {
		if _, seen := out[n]; seen {
			return
		}
		s, ok := d.Definitions[n]
		if !ok {
			return
		}
		out[n] = s
		walkSchema(n, s, func(_ string, child *Schema) {
			if ref, ok := strings.CutPrefix(child.Ref, DefinitionPrefix); ok {
				visit(ref)
			}
		})
	}
	visit(name)
	return out
}

// slot returns the operation field for a lowercase verb, or nil for verbs a
// path item cannot hold.
func (p *PathItem) slot(verb string) **Operation {
	switch verb {
	case "get":
		return &p.Get
	case "put":
		return &p.Put
	case "post":
		return &p.Post
	case "delete":
		return &p.Delete
	case "options":
		return &p.Options
	case "head":
		return &p.Head
	case "patch":
		return &p.Patch
	}
	return nil
}

func refSchema(name string) *Schema {
	return &Schema{Ref: DefinitionPrefix + name}
}
