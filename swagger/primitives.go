package swagger

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalvas/specc/decl"
)

// Primitive is a schema type and format pair.
//
// See: https://swagger.io/specification/v2/#data-types
type Primitive struct {
	Type   string `yaml:"type"`
	Format string `yaml:"format,omitempty"`
}

// primitiveNames is the fixed table of primitive type names accepted in
// implicit parameter declarations and manifests.
var primitiveNames = map[string]Primitive{
	"string":    {"string", ""},
	"boolean":   {"boolean", ""},
	"byte":      {"string", "byte"},
	"binary":    {"string", "binary"},
	"uri":       {"string", "uri"},
	"url":       {"string", "url"},
	"uuid":      {"string", "uuid"},
	"email":     {"string", "email"},
	"password":  {"string", "password"},
	"date":      {"string", "date"},
	"date-time": {"string", "date-time"},
	"integer":   {"integer", "int32"},
	"int":       {"integer", "int32"},
	"long":      {"integer", "int64"},
	"float":     {"number", "float"},
	"double":    {"number", "double"},
	"number":    {"number", ""},
	"file":      {"file", ""},
	"object":    {"object", ""},
}

// PrimitiveByName looks up a primitive type name (case-insensitive).
func PrimitiveByName(name string) (Primitive, bool) {
	p, ok := primitiveNames[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// defaultExternalTypes maps well-known named types that would otherwise
// resolve to their Go representation.
func defaultExternalTypes() map[string]Primitive {
	return map[string]Primitive{
		decl.TypeFor[time.Time]().Name: {"string", "date-time"},
		decl.TypeFor[uuid.UUID]().Name: {"string", "uuid"},
	}
}

// isSimpleType reports whether a schema type can be sent as a form field.
func isSimpleType(typ string) bool {
	switch typ {
	case "string", "number", "integer", "boolean", "file":
		return true
	}
	return false
}

// typedValue converts a declared default or enum value to the JSON type of
// the schema it belongs to. Values that do not parse stay strings.
func typedValue(typ, value string) any {
	switch typ {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}
