package decl

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
)

// Loader builds type descriptors from Go types using reflection. Descriptors
// are cached per Go type, so a type referenced from several places resolves
// to the same *Type and recursive types terminate.
//
// Struct fields follow encoding/json naming: the json tag name wins, "-"
// skips the field, and fields without omitempty/omitzero are required.
// Anonymous struct fields without a json name are inlined. The "openapi" tag
// is carried through as schema constraints and the "api" tag supplies
// parameter metadata when the struct is used as a request body:
//
//	type CreateUser struct {
//	    Name  string `json:"name" api:"name=name,required,description=User name"`
//	    Role  string `json:"role" api:"allowable=admin|user"`
//	    Age   int    `json:"age,omitempty" openapi:"minimum=0"`
//	}
type Loader struct {
	mu    sync.Mutex
	cache map[reflect.Type]*Type
}

// NewLoader creates an empty reflection loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[reflect.Type]*Type)}
}

var defaultLoader = NewLoader()

// TypeOf returns the descriptor for the dynamic type of v using a shared
// loader. A nil v yields Void.
func TypeOf(v any) *Type {
	if v == nil {
		return Void
	}
	if t, ok := v.(*Type); ok {
		return t
	}
	return defaultLoader.Load(reflect.TypeOf(v))
}

// TypeFor returns the descriptor for T using a shared loader.
func TypeFor[T any]() *Type {
	return defaultLoader.Load(reflect.TypeFor[T]())
}

var (
	httpRequestType = reflect.TypeFor[http.Request]()
	byteSliceType   = reflect.TypeFor[[]byte]()
)

// Load returns the descriptor for t.
func (l *Loader) Load(t reflect.Type) *Type {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(t)
}

func (l *Loader) load(t reflect.Type) *Type {
	if t == nil {
		return Void
	}
	if cached, ok := l.cache[t]; ok {
		return cached
	}

	if t.Kind() == reflect.Pointer {
		// Pointers document the same shape as their element.
		out := l.load(t.Elem())
		l.cache[t] = out
		return out
	}

	out := &Type{Name: typeName(t)}
	l.cache[t] = out

	switch {
	case t == httpRequestType:
		out.Kind = KindRequest
		return out
	case t.Implements(futureMarkerType):
		out.Kind = KindFuture
		out.Elem = l.load(reflect.Zero(t).Interface().(futureMarker).futurePayload())
		return out
	case t.Implements(tokenMarkerType):
		out.Kind = KindToken
		out.Elem = l.load(reflect.Zero(t).Interface().(tokenMarker).tokenElement())
		return out
	case t == byteSliceType:
		out.Kind = KindString
		out.Format = "byte"
		return out
	}

	switch t.Kind() {
	case reflect.Bool:
		out.Kind = KindBoolean

	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		out.Kind = KindInteger
		out.Format = "int64"

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		out.Kind = KindInteger
		out.Format = "int32"

	case reflect.Float32:
		out.Kind = KindNumber
		out.Format = "float"

	case reflect.Float64:
		out.Kind = KindNumber
		out.Format = "double"

	case reflect.String:
		out.Kind = KindString

	case reflect.Slice, reflect.Array:
		out.Kind = KindArray
		out.Elem = l.load(t.Elem())

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			out.Kind = KindAny
			break
		}
		out.Kind = KindMap
		out.Elem = l.load(t.Elem())

	case reflect.Chan:
		// A receive channel delivers its payload later, like a future.
		out.Kind = KindFuture
		out.Elem = l.load(t.Elem())

	case reflect.Interface:
		out.Kind = KindAny

	case reflect.Struct:
		out.Kind = KindObject
		var params []*Param
		l.collectFields(t, out, &params, false)
		out.Constructors = []Constructor{{Creator: true, Params: params}}

	default:
		out.Kind = KindInvalid
	}

	return out
}

// collectFields walks struct fields into the object descriptor and the
// synthesized creator parameter list. When allOptional is true every field is
// optional, which is the case for fields inlined from a pointer-embedded
// struct.
func (l *Loader) collectFields(t reflect.Type, out *Type, params *[]*Param, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					l.collectFields(ft, out, params, allOptional || isPtr)
					continue
				}
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, omitempty := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		ft := l.load(field.Type)
		out.Fields = append(out.Fields, Field{
			Name:     name,
			Type:     ft,
			Required: !omitempty && !allOptional,
			Tag:      field.Tag.Get("openapi"),
		})

		param := &Param{Type: ft}
		if tag, ok := field.Tag.Lookup("api"); ok {
			param.Meta = parseAPITag(tag, name)
		}
		*params = append(*params, param)
	}
}

func parseJSONTag(tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero")
}

// parseAPITag reads parameter metadata from an "api" struct tag. Allowable
// values are pipe-separated in the tag and stored comma-separated.
func parseAPITag(tag, fallbackName string) *ParamMeta {
	meta := &ParamMeta{Name: fallbackName}
	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			if value != "" {
				meta.Name = value
			}
		case "required":
			meta.Required = true
		case "description":
			meta.Description = value
		case "access":
			meta.Access = value
		case "allowable":
			meta.AllowableValues = strings.ReplaceAll(value, "|", ",")
		case "default":
			meta.DefaultValue = value
		}
	}
	return meta
}

// typeName returns a qualified name ("pkg.Type") for named types and an
// empty string for unnamed ones. Generic instantiations are flattened the
// way component schema names are: "Page[pkg.User]" becomes "PageUser" and
// "Page[[]pkg.User]" becomes "PageUserList".
func typeName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return ""
	}
	pkg := t.PkgPath()
	if idx := strings.LastIndexByte(pkg, '/'); idx >= 0 {
		pkg = pkg[idx+1:]
	}
	return pkg + "." + flattenGenericName(t.Name())
}

func flattenGenericName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}
