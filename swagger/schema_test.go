package swagger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalvas/specc/decl"
)

func newTestResolver(externals map[string]Primitive) (*Resolver, *Document) {
	doc := NewDocument(Info{Title: "Test", Version: "1.0.0"})
	return NewResolver(doc, externals, nil), doc
}

func TestResolvePropertyPrimitives(t *testing.T) {
	r, doc := newTestResolver(nil)

	tests := []struct {
		name string
		typ  *decl.Type
		want *Schema
	}{
		{"string", decl.TypeFor[string](), &Schema{Type: "string"}},
		{"int", decl.TypeFor[int](), &Schema{Type: "integer", Format: "int64"}},
		{"int32", decl.TypeFor[int32](), &Schema{Type: "integer", Format: "int32"}},
		{"float32", decl.TypeFor[float32](), &Schema{Type: "number", Format: "float"}},
		{"float64", decl.TypeFor[float64](), &Schema{Type: "number", Format: "double"}},
		{"bool", decl.TypeFor[bool](), &Schema{Type: "boolean"}},
		{"bytes", decl.TypeFor[[]byte](), &Schema{Type: "string", Format: "byte"}},
		{"any", decl.TypeFor[any](), &Schema{Type: "object"}},
		{"file", decl.Primitive(decl.KindFile, ""), &Schema{Type: "file"}},
		{"time", decl.TypeFor[time.Time](), &Schema{Type: "string", Format: "date-time"}},
		{"uuid", decl.TypeFor[uuid.UUID](), &Schema{Type: "string", Format: "uuid"}},
		{"slice", decl.TypeFor[[]string](), &Schema{Type: "array", Items: &Schema{Type: "string"}}},
		{"map", decl.TypeFor[map[string]int](), &Schema{Type: "object", AdditionalProperties: &Schema{Type: "integer", Format: "int64"}}},
		{"future", decl.TypeFor[decl.Future[bool]](), &Schema{Type: "boolean"}},
		{"token", decl.TypeFor[decl.Token[[]int32]](), &Schema{Type: "array", Items: &Schema{Type: "integer", Format: "int32"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveProperty(tt.typ))
		})
	}

	t.Run("void", func(t *testing.T) {
		assert.Nil(t, r.ResolveProperty(decl.Void))
		assert.Nil(t, r.ResolveProperty(nil))
	})

	assert.Empty(t, doc.Definitions)
}

func TestResolvePropertyModels(t *testing.T) {
	t.Run("named object is referenced", func(t *testing.T) {
		r, doc := newTestResolver(nil)

		schema := r.ResolveProperty(decl.TypeFor[testReport]())
		assert.Equal(t, &Schema{Ref: "#/definitions/swagger.testReport"}, schema)

		report := doc.Definition("swagger.testReport")
		require.NotNil(t, report)
		assert.Equal(t, "object", report.Type)
		assert.Equal(t, []string{"id", "title", "created_at"}, report.Required)
		assert.Equal(t, &Schema{Type: "integer", Format: "int64"}, report.Properties["id"])
		assert.Equal(t, &Schema{Type: "array", Items: &Schema{Type: "string"}}, report.Properties["tags"])
		assert.Equal(t, &Schema{Type: "string", Format: "date-time"}, report.Properties["created_at"])
		assert.Equal(t, "#/definitions/swagger.testUser", report.Properties["owner"].Ref)

		user := doc.Definition("swagger.testUser")
		require.NotNil(t, user)
		assert.Equal(t, &Schema{Type: "string", Format: "uuid"}, user.Properties["id"])
		require.NotNil(t, user.Properties["name"].MinLength)
		assert.Equal(t, 1, *user.Properties["name"].MinLength)
		assert.Equal(t, "Display name", user.Properties["name"].Description)
	})

	t.Run("idempotent", func(t *testing.T) {
		r, doc := newTestResolver(nil)
		first := r.ResolveProperty(decl.TypeFor[testReport]())
		before := len(doc.Definitions)
		second := r.ResolveProperty(decl.TypeFor[*testReport]())

		assert.Equal(t, first, second)
		assert.Len(t, doc.Definitions, before)
	})

	t.Run("recursive type terminates", func(t *testing.T) {
		r, doc := newTestResolver(nil)

		schema := r.ResolveProperty(decl.TypeFor[testNode]())
		assert.Equal(t, "#/definitions/swagger.testNode", schema.Ref)

		node := doc.Definition("swagger.testNode")
		require.NotNil(t, node)
		children := node.Properties["children"]
		assert.Equal(t, "array", children.Type)
		assert.Equal(t, "#/definitions/swagger.testNode", children.Items.Ref)
		assert.NoError(t, doc.Check())
	})

	t.Run("anonymous object is inline", func(t *testing.T) {
		r, doc := newTestResolver(nil)

		schema := r.ResolveProperty(decl.TypeFor[struct {
			Count int `json:"count"`
		}]())
		assert.Empty(t, schema.Ref)
		assert.Equal(t, "object", schema.Type)
		assert.Equal(t, []string{"count"}, schema.Required)
		assert.Empty(t, doc.Definitions)
	})

	t.Run("future payload matches plain payload", func(t *testing.T) {
		r, _ := newTestResolver(nil)
		assert.Equal(t,
			r.ResolveProperty(decl.TypeFor[testReport]()),
			r.ResolveProperty(decl.TypeFor[decl.Future[testReport]]()))
	})

	t.Run("external types override shape", func(t *testing.T) {
		r, doc := newTestResolver(map[string]Primitive{
			"swagger.testUser": {Type: "string", Format: "user-id"},
		})

		assert.Equal(t, &Schema{Type: "string", Format: "user-id"}, r.ResolveProperty(decl.TypeFor[testUser]()))
		assert.True(t, r.IsPrimitive(decl.TypeFor[testUser]()))
		assert.Nil(t, r.ResolveModel(decl.TypeFor[testUser]()))
		assert.Empty(t, doc.Definitions)
	})
}

func TestResolveModel(t *testing.T) {
	r, doc := newTestResolver(nil)

	models := r.ResolveModel(decl.TypeFor[decl.Future[testReport]]())
	assert.Len(t, models, 2)
	assert.Contains(t, models, "swagger.testReport")
	assert.Contains(t, models, "swagger.testUser")
	assert.Len(t, doc.Definitions, 2)

	assert.Nil(t, r.ResolveModel(decl.TypeFor[string]()))
	assert.Nil(t, r.ResolveModel(decl.TypeFor[[]testReport]()))
	assert.Nil(t, r.ResolveModel(decl.Void))
}

func TestIsPrimitive(t *testing.T) {
	r, _ := newTestResolver(nil)

	assert.True(t, r.IsPrimitive(decl.TypeFor[string]()))
	assert.True(t, r.IsPrimitive(decl.TypeFor[[]testReport]()))
	assert.True(t, r.IsPrimitive(decl.TypeFor[decl.Future[int]]()))
	assert.True(t, r.IsPrimitive(decl.TypeFor[time.Time]()))
	assert.False(t, r.IsPrimitive(decl.TypeFor[testReport]()))
	assert.False(t, r.IsPrimitive(decl.TypeFor[map[string]string]()))
	assert.False(t, r.IsPrimitive(decl.Void))
}

func TestResolveUnresolvable(t *testing.T) {
	logger, logs := observedLogger(zap.WarnLevel)
	doc := NewDocument(Info{})
	r := NewResolver(doc, nil, logger)

	schema := r.ResolveProperty(decl.TypeFor[func()]())
	assert.Equal(t, &Schema{}, schema)

	schema = r.ResolveProperty(&decl.Type{Kind: decl.KindArray})
	assert.Equal(t, &Schema{Type: "array", Items: &Schema{}}, schema)

	entries := logs.FilterMessage("Using opaque schema for unresolvable type").All()
	require.Len(t, entries, 2)
	err, ok := entries[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, err, "unresolvable type")
}

func TestApplyConstraintTag(t *testing.T) {
	t.Run("numeric bounds", func(t *testing.T) {
		s := &Schema{Type: "integer"}
		applyConstraintTag(s, "minimum=0,maximum=150,multipleOf=5,default=10,example=20")
		require.NotNil(t, s.Minimum)
		require.NotNil(t, s.Maximum)
		require.NotNil(t, s.MultipleOf)
		assert.Equal(t, 0.0, *s.Minimum)
		assert.Equal(t, 150.0, *s.Maximum)
		assert.Equal(t, 5.0, *s.MultipleOf)
		assert.Equal(t, int64(10), s.Default)
		assert.Equal(t, int64(20), s.Example)
	})

	t.Run("exclusive bounds", func(t *testing.T) {
		s := &Schema{Type: "number"}
		applyConstraintTag(s, "exclusiveMinimum=0,exclusiveMaximum=1")
		assert.True(t, s.ExclusiveMinimum)
		assert.True(t, s.ExclusiveMaximum)
		assert.Equal(t, 0.0, *s.Minimum)
		assert.Equal(t, 1.0, *s.Maximum)
	})

	t.Run("string constraints", func(t *testing.T) {
		s := &Schema{Type: "string"}
		applyConstraintTag(s, "minLength=1,maxLength=64,pattern=^[a-z]+$,format=email,title=Email,readOnly")
		assert.Equal(t, 1, *s.MinLength)
		assert.Equal(t, 64, *s.MaxLength)
		assert.Equal(t, "^[a-z]+$", s.Pattern)
		assert.Equal(t, "email", s.Format)
		assert.Equal(t, "Email", s.Title)
		assert.True(t, s.ReadOnly)
	})

	t.Run("array and object constraints", func(t *testing.T) {
		s := &Schema{Type: "array"}
		applyConstraintTag(s, "minItems=1,maxItems=10,uniqueItems,minProperties=2,maxProperties=3")
		assert.Equal(t, 1, *s.MinItems)
		assert.Equal(t, 10, *s.MaxItems)
		assert.True(t, s.UniqueItems)
		assert.Equal(t, 2, *s.MinProperties)
		assert.Equal(t, 3, *s.MaxProperties)
	})

	t.Run("typed enum", func(t *testing.T) {
		s := &Schema{Type: "integer"}
		applyConstraintTag(s, "enum=1|2|3")
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, s.Enum)

		s = &Schema{Type: "string"}
		applyConstraintTag(s, "enum=a|b")
		assert.Equal(t, []any{"a", "b"}, s.Enum)
	})

	t.Run("invalid numbers are ignored", func(t *testing.T) {
		s := &Schema{Type: "integer"}
		applyConstraintTag(s, "minimum=abc,minLength=x")
		assert.Nil(t, s.Minimum)
		assert.Nil(t, s.MinLength)
	})
}

func TestPrimitiveByName(t *testing.T) {
	p, ok := PrimitiveByName("Long")
	require.True(t, ok)
	assert.Equal(t, Primitive{Type: "integer", Format: "int64"}, p)

	p, ok = PrimitiveByName(" date-time ")
	require.True(t, ok)
	assert.Equal(t, Primitive{Type: "string", Format: "date-time"}, p)

	_, ok = PrimitiveByName("decimal")
	assert.False(t, ok)
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, int64(5), typedValue("integer", "5"))
	assert.Equal(t, 2.5, typedValue("number", "2.5"))
	assert.Equal(t, true, typedValue("boolean", "true"))
	assert.Equal(t, "five", typedValue("integer", "five"))
	assert.Equal(t, "5", typedValue("string", "5"))
}
