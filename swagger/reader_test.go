package swagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalvas/specc/decl"
)

func usersService() *decl.ServiceBuilder {
	svc := decl.NewService("api.Users").Path("/users").Tags("users")
	svc.Method("list").GET().
		Summary("List users").
		Response([]testUser{})
	svc.Method("get").GET().Path("/{id:int}").
		Nickname("getUser").
		Notes("Returns a single user").
		RawRequest().
		Implicit(decl.ImplicitParam{Name: "id", In: "path", DataType: "long"}).
		Response(testUser{}).
		APIResponse(404, "", nil)
	svc.Method("remove").DELETE().Path("/{id:int}").
		RawRequest().
		Implicit(decl.ImplicitParam{Name: "id", In: "path", DataType: "long"}).
		Deprecated()
	return svc
}

func TestReaderScan(t *testing.T) {
	doc := readOne(t, usersService())

	assert.Equal(t, []string{"/users", "/users/{id}"}, doc.PathNames())
	assert.Equal(t, []Tag{{Name: "users"}}, doc.Tags)

	t.Run("list", func(t *testing.T) {
		op := doc.Operation("/users", "get")
		require.NotNil(t, op)
		assert.Equal(t, "list", op.OperationID)
		assert.Equal(t, "List users", op.Summary)
		assert.Equal(t, []string{"users"}, op.Tags)
		assert.Equal(t, []string{"application/json"}, op.Consumes)
		assert.Equal(t, []string{"application/json"}, op.Produces)

		resp := op.Responses["200"]
		require.NotNil(t, resp)
		assert.Equal(t, "successful operation", resp.Description)
		assert.Equal(t, &Schema{Type: "array", Items: &Schema{Ref: "#/definitions/swagger.testUser"}}, resp.Schema)
	})

	t.Run("get", func(t *testing.T) {
		op := doc.Operation("/users/{id}", "get")
		require.NotNil(t, op)
		assert.Equal(t, "getUser", op.OperationID)
		assert.Equal(t, "Returns a single user", op.Description)
		assert.Equal(t, []*Parameter{{
			Name:     "id",
			In:       "path",
			Required: true,
			Type:     "integer",
			Format:   "int64",
			Pattern:  "[0-9]+",
		}}, op.Parameters)

		assert.Equal(t, &Schema{Ref: "#/definitions/swagger.testUser"}, op.Responses["200"].Schema)
		assert.Equal(t, "Not Found", op.Responses["404"].Description)
		assert.Nil(t, op.Responses["404"].Schema)
	})

	t.Run("remove", func(t *testing.T) {
		op := doc.Operation("/users/{id}", "delete")
		require.NotNil(t, op)
		assert.True(t, op.Deprecated)
		assert.Equal(t, &Response{Description: "successful operation"}, op.Responses["default"])
	})

	t.Run("every operation has a response", func(t *testing.T) {
		doc.Operations(func(path, verb string, op *Operation) {
			assert.NotEmpty(t, op.Responses, "%s %s", verb, path)
		})
	})

	assert.NoError(t, doc.Check())
}

func TestReaderPaths(t *testing.T) {
	t.Run("methods without paths are skipped", func(t *testing.T) {
		svc := decl.NewService("api.Internal")
		svc.Method("ping").GET()

		doc := readOne(t, svc)
		assert.Empty(t, doc.Paths)
	})

	t.Run("methods without metadata are skipped", func(t *testing.T) {
		svc := decl.NewService("api.Users").Path("/users")
		svc.Method("list").GET()
		svc.Service().Methods = append(svc.Service().Methods, &decl.Method{Name: "helper", Path: "/helper"})

		doc := readOne(t, svc)
		assert.Equal(t, []string{"/users"}, doc.PathNames())
	})

	t.Run("undeclared variables are synthesized", func(t *testing.T) {
		svc := decl.NewService("api.Files").Path("//files/")
		svc.Method("get").GET().Path("/{id:uuid}/")
		svc.Method("version").GET().Path("/{id:uuid}/v/{n:[0-9]+}")

		doc := readOne(t, svc)
		op := doc.Operation("/files/{id}", "get")
		require.NotNil(t, op)
		assert.Equal(t, []*Parameter{{
			Name:     "id",
			In:       "path",
			Required: true,
			Type:     "string",
			Format:   "uuid",
			Pattern:  pathMacros["uuid"].pattern,
		}}, op.Parameters)

		op = doc.Operation("/files/{id}/v/{n}", "get")
		require.NotNil(t, op)
		n := paramByName(op.Parameters, "n")
		require.NotNil(t, n)
		assert.Equal(t, "string", n.Type)
		assert.Equal(t, "[0-9]+", n.Pattern)
	})

	t.Run("pattern attaches to same-named parameters", func(t *testing.T) {
		svc := decl.NewService("api.Items").Path("/items")
		svc.Method("get").GET().Path("/{code:[A-Z]{3}}").RawRequest().Implicit(
			decl.ImplicitParam{Name: "code", In: "path"},
			decl.ImplicitParam{Name: "code", In: "query"},
		)

		op := readOne(t, svc).Operation("/items/{code}", "get")
		require.Len(t, op.Parameters, 2)
		for _, p := range op.Parameters {
			assert.Equal(t, "[A-Z]{3}", p.Pattern, p.In)
		}
	})

	t.Run("malformed path", func(t *testing.T) {
		svc := decl.NewService("api.Bad").Path("/bad")
		svc.Method("get").GET().Path("/{id")

		_, err := NewReader().Read(svc.Service(), false)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
		assert.ErrorContains(t, err, "malformed path")
	})
}

func TestReaderVerbs(t *testing.T) {
	svc := decl.NewService("api.Verbs").Path("/verbs")
	svc.Method("explicit").GET().HTTPMethod("PUT").Path("/explicit")
	svc.Method("marker").PATCH().CustomVerb("DELETE").Path("/marker")
	svc.Method("custom").CustomVerb("options").Path("/custom")
	svc.Method("head").HEAD().Path("/head")
	svc.Method("fallback").Path("/fallback")

	doc := readOne(t, svc)
	assert.NotNil(t, doc.Operation("/verbs/explicit", "put"))
	assert.Nil(t, doc.Operation("/verbs/explicit", "get"))
	assert.NotNil(t, doc.Operation("/verbs/marker", "patch"))
	assert.NotNil(t, doc.Operation("/verbs/custom", "options"))
	assert.NotNil(t, doc.Operation("/verbs/head", "head"))
	assert.NotNil(t, doc.Operation("/verbs/fallback", "post"))

	t.Run("unsupported verb", func(t *testing.T) {
		svc := decl.NewService("api.Trace").Path("/trace")
		svc.Method("trace").CustomVerb("TRACE")

		_, err := NewReader().Read(svc.Service(), false)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
		assert.ErrorContains(t, err, `unsupported HTTP verb "trace"`)
	})
}

func TestReaderResponses(t *testing.T) {
	t.Run("json return type", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("sync").GET().Path("/sync").JSON().Returns(testReport{})
		svc.Method("async").GET().Path("/async").JSON().Returns(decl.Future[testReport]{})
		svc.Method("chan").GET().Path("/chan").JSON().Returns((<-chan testReport)(nil))
		svc.Method("plain").GET().Path("/plain").Returns(testReport{})

		doc := readOne(t, svc)
		want := &Schema{Ref: "#/definitions/swagger.testReport"}
		assert.Equal(t, want, doc.Operation("/reports/sync", "get").Responses["200"].Schema)
		assert.Equal(t, want, doc.Operation("/reports/async", "get").Responses["200"].Schema)
		assert.Equal(t, want, doc.Operation("/reports/chan", "get").Responses["200"].Schema)
		assert.Nil(t, doc.Operation("/reports/plain", "get").Responses["200"])
		assert.NoError(t, doc.Check())
	})

	t.Run("explicit response wins over return type", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("get").GET().JSON().Returns(testReport{}).Response(testUser{})

		op := readOne(t, svc).Operation("/reports", "get")
		assert.Equal(t, "#/definitions/swagger.testUser", op.Responses["200"].Schema.Ref)
	})

	t.Run("typed token response", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("list").GET().Response(decl.Token[[]testReport]{})

		op := readOne(t, svc).Operation("/reports", "get")
		assert.Equal(t, &Schema{Type: "array", Items: &Schema{Ref: "#/definitions/swagger.testReport"}}, op.Responses["200"].Schema)
	})

	t.Run("containers", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("list").GET().Path("/list").Response(testReport{}).ResponseContainer("List")
		svc.Method("index").GET().Path("/index").Response(0).ResponseContainer(decl.ContainerMap)

		doc := readOne(t, svc)
		assert.Equal(t,
			&Schema{Type: "array", Items: &Schema{Ref: "#/definitions/swagger.testReport"}},
			doc.Operation("/reports/list", "get").Responses["200"].Schema)
		assert.Equal(t,
			&Schema{Type: "object", AdditionalProperties: &Schema{Type: "integer", Format: "int64"}},
			doc.Operation("/reports/index", "get").Responses["200"].Schema)
	})

	t.Run("response code table", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("create").POST().
			APIResponse(201, "Created report", testReport{}).
			APIResponse(0, "", testUser{}).
			APIResponse(499, "", nil)

		op := readOne(t, svc).Operation("/reports", "post")
		require.Len(t, op.Responses, 3)
		assert.Equal(t, "Created report", op.Responses["201"].Description)
		assert.Equal(t, "#/definitions/swagger.testReport", op.Responses["201"].Schema.Ref)
		assert.Equal(t, "default response", op.Responses["default"].Description)
		assert.Equal(t, "#/definitions/swagger.testUser", op.Responses["default"].Schema.Ref)
		assert.Equal(t, "response 499", op.Responses["499"].Description)
	})

	t.Run("response headers", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("list").GET().
			Response([]testReport{}).
			ResponseHeader("X-Rate-Limit", "Calls per hour", 0).
			ResponseHeader("X-Owner", "", testUser{}).
			ResponseHeader("X-Ids", "", []string{}).
			ResponseHeader("", "", 0)

		headers := readOne(t, svc).Operation("/reports", "get").Responses["200"].Headers
		require.Len(t, headers, 3)
		assert.Equal(t, &Header{Description: "Calls per hour", Type: "integer", Format: "int64"}, headers["X-Rate-Limit"])
		assert.Equal(t, &Header{Type: "string"}, headers["X-Owner"])
		assert.Equal(t, &Header{Type: "array", Items: &Schema{Type: "string"}}, headers["X-Ids"])
	})

	t.Run("invalid response header", func(t *testing.T) {
		svc := decl.NewService("api.Reports").Path("/reports")
		svc.Method("list").GET().Response(0).ResponseHeader("bad header", "", 0)

		_, err := NewReader().Read(svc.Service(), false)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
	})
}

func TestReaderSubResources(t *testing.T) {
	t.Run("nested paths inherit tags and parameters", func(t *testing.T) {
		posts := decl.NewService("api.Posts").Tags("posts")
		posts.Method("list").GET().Path("/posts").Response([]testReport{})
		posts.Method("create").POST().Path("/posts").
			Param(decl.ParamMeta{Name: "title"}, "")

		users := decl.NewService("api.Users").Path("/users").Tags("users")
		users.Method("posts").Path("/{id:int}").
			RawRequest().
			Implicit(decl.ImplicitParam{Name: "id", In: "path", DataType: "long"}).
			SubResource(posts)

		doc := readOne(t, users)
		assert.Equal(t, []string{"/users/{id}", "/users/{id}/posts"}, doc.PathNames())
		assert.Equal(t, []Tag{{Name: "posts"}, {Name: "users"}}, doc.Tags)

		list := doc.Operation("/users/{id}/posts", "get")
		require.NotNil(t, list)
		assert.ElementsMatch(t, []string{"posts", "users"}, list.Tags)

		id := paramByName(list.Parameters, "id")
		require.NotNil(t, id)
		assert.Equal(t, "path", id.In)
		assert.Equal(t, "integer", id.Type)
		assert.Equal(t, "[0-9]+", id.Pattern)

		create := doc.Operation("/users/{id}/posts", "post")
		require.NotNil(t, create)
		assert.Len(t, create.Parameters, 2)
		assert.NotSame(t, id, paramByName(create.Parameters, "id"))
		assert.NoError(t, doc.Check())
	})

	t.Run("locator with verb is also a route", func(t *testing.T) {
		child := decl.NewService("api.Child")
		child.Method("create").POST().Path("/")

		parent := decl.NewService("api.Parent").Path("/parent")
		parent.Method("child").GET().Path("/child").SubResource(child)

		doc := readOne(t, parent)
		assert.Equal(t, []string{"/parent/child"}, doc.PathNames())
		assert.Equal(t, "child", doc.Operation("/parent/child", "get").OperationID)
		assert.Equal(t, "create", doc.Operation("/parent/child", "post").OperationID)
	})

	t.Run("hidden child is expanded", func(t *testing.T) {
		child := decl.NewService("api.Child").Hidden()
		child.Method("get").GET().Path("/leaf")

		parent := decl.NewService("api.Parent").Path("/parent")
		parent.Method("child").SubResource(child)

		doc := readOne(t, parent)
		assert.NotNil(t, doc.Operation("/parent/leaf", "get"))

		locator := doc.Operation("/parent", "post")
		require.NotNil(t, locator)
		assert.Equal(t, "child", locator.OperationID)
		assert.Equal(t, []string{"/parent", "/parent/leaf"}, doc.PathNames())
	})

	t.Run("locator without verb defaults to post", func(t *testing.T) {
		child := decl.NewService("api.Child")
		child.Method("list").GET().Path("/")

		parent := decl.NewService("api.Parent").Path("/parent")
		parent.Method("child").Path("/c").SubResource(child)

		doc := readOne(t, parent)
		assert.Equal(t, []string{"/parent/c"}, doc.PathNames())
		assert.Equal(t, "list", doc.Operation("/parent/c", "get").OperationID)
		locator := doc.Operation("/parent/c", "post")
		require.NotNil(t, locator)
		assert.Equal(t, "child", locator.OperationID)
	})

	t.Run("indirect cycle", func(t *testing.T) {
		a := decl.NewService("api.A").Path("/a")
		b := decl.NewService("api.B")
		a.Method("b").Path("/b").SubResource(b)
		b.Method("a").Path("/a").SubResource(a)

		_, err := NewReader().Read(a.Service(), false)
		require.ErrorIs(t, err, ErrCyclicSubResource)
		assert.ErrorContains(t, err, "api.A -> api.B -> api.A")
	})

	t.Run("direct cycle", func(t *testing.T) {
		a := decl.NewService("api.A").Path("/a")
		a.Method("self").Path("/self").SubResource(a)

		_, err := NewReader().Read(a.Service(), false)
		require.ErrorIs(t, err, ErrCyclicSubResource)
		assert.ErrorContains(t, err, "api.A -> api.A")
	})

	t.Run("shared child is not a cycle", func(t *testing.T) {
		shared := decl.NewService("api.Shared")
		shared.Method("get").GET().Path("/shared")

		parent := decl.NewService("api.Parent").Path("/parent")
		parent.Method("one").Path("/one").SubResource(shared)
		parent.Method("two").Path("/two").SubResource(shared)

		doc := readOne(t, parent)
		assert.Equal(t, []string{"/parent/one", "/parent/one/shared", "/parent/two", "/parent/two/shared"}, doc.PathNames())
	})
}

func TestReaderTagsAndVisibility(t *testing.T) {
	t.Run("derived and operation tags", func(t *testing.T) {
		svc := decl.NewService("api.Admin").Path("/admin").Value("/admin/")
		svc.Method("stats").GET().Tags("stats", "")

		doc := readOne(t, svc)
		op := doc.Operation("/admin", "get")
		assert.Equal(t, []string{"stats", "admin"}, op.Tags)
		assert.Equal(t, []Tag{{Name: "admin"}, {Name: "stats"}}, doc.Tags)
	})

	t.Run("hidden service", func(t *testing.T) {
		svc := decl.NewService("api.Secret").Path("/secret").Hidden()
		svc.Method("get").GET()

		doc, err := NewReader().Read(svc.Service(), false)
		require.NoError(t, err)
		assert.Empty(t, doc.Paths)

		doc, err = NewReader().Read(svc.Service(), true)
		require.NoError(t, err)
		assert.NotNil(t, doc.Operation("/secret", "get"))
	})

	t.Run("hidden operation", func(t *testing.T) {
		svc := decl.NewService("api.Users").Path("/users")
		svc.Method("list").GET()
		svc.Method("purge").DELETE().Hidden()

		doc := readOne(t, svc)
		assert.NotNil(t, doc.Operation("/users", "get"))
		assert.Nil(t, doc.Operation("/users", "delete"))
	})
}

func TestReaderSecurityAndProtocols(t *testing.T) {
	logger, logs := observedLogger(zap.WarnLevel)

	svc := decl.NewService("api.Users").Path("/users").Authorizations("api_key")
	svc.Method("list").GET().
		Authorizations("oauth", "api_key").
		Protocols("https, http", "ftp", "HTTPS").
		Consumes("multipart/form-data", " ").
		Produces("application/json", "application/x-yaml")

	doc := readOne(t, svc,
		WithLogger(logger),
		WithSecurityDefinition("oauth", &SecurityScheme{Type: "oauth2", Flow: "implicit", AuthorizationURL: "https://auth.example.com"}),
	)

	op := doc.Operation("/users", "get")
	require.NotNil(t, op)
	assert.Equal(t, []SecurityRequirement{{"oauth": {}}, {"api_key": {}}}, op.Security)
	assert.Equal(t, "oauth2", doc.SecurityDefinitions["oauth"].Type)
	assert.Equal(t, "apiKey", doc.SecurityDefinitions["api_key"].Type)

	assert.Equal(t, []string{"https", "http"}, op.Schemes)
	assert.Equal(t, 1, logs.FilterMessage("Skipping unknown protocol").Len())

	assert.Equal(t, []string{"multipart/form-data"}, op.Consumes)
	assert.Equal(t, []string{"application/json", "application/x-yaml"}, op.Produces)
	assert.NoError(t, doc.Check())
}

func TestReaderCollision(t *testing.T) {
	logger, logs := observedLogger(zap.WarnLevel)

	svc := decl.NewService("api.Users").Path("/users")
	svc.Method("first").GET()
	svc.Method("second").GET().Path("/")

	doc := readOne(t, svc, WithLogger(logger))
	op := doc.Operation("/users", "get")
	require.NotNil(t, op)
	assert.Equal(t, "second", op.OperationID)

	entries := logs.FilterMessage("Replacing operation already registered for path and verb").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/users", entries[0].ContextMap()["path"])
	assert.Equal(t, "second", entries[0].ContextMap()["method"])
}

func TestReaderOptions(t *testing.T) {
	r := NewReader(
		WithInfo(Info{Title: "Users", Version: "2.1.0"}),
		WithHost("api.example.com"),
		WithBasePath("/v2"),
		WithSchemes("https"),
		WithExternalTypes(map[string]Primitive{"swagger.testUser": {Type: "string"}}),
	)

	doc := r.Document()
	assert.Equal(t, Version, doc.Swagger)
	assert.Equal(t, "Users", doc.Info.Title)
	assert.Equal(t, "api.example.com", doc.Host)
	assert.Equal(t, "/v2", doc.BasePath)
	assert.Equal(t, []string{"https"}, doc.Schemes)
	assert.Equal(t, &Schema{Type: "string"}, r.Resolver().ResolveProperty(decl.TypeFor[testUser]()))

	assert.Equal(t, Info{Title: "API", Version: "1.0.0"}, NewReader().Document().Info)
}

func TestCompile(t *testing.T) {
	t.Run("several services", func(t *testing.T) {
		reports := decl.NewService("api.Reports").Path("/reports").Tags("reports")
		reports.Method("list").GET().Response([]testReport{})

		hidden := decl.NewService("api.Hidden").Path("/hidden").Hidden()
		hidden.Method("get").GET()

		doc, err := Compile([]*decl.Service{usersService().Service(), reports.Service(), hidden.Service()})
		require.NoError(t, err)
		assert.Equal(t, []string{"/reports", "/users", "/users/{id}"}, doc.PathNames())
		assert.Equal(t, []Tag{{Name: "reports"}, {Name: "users"}}, doc.Tags)
		assert.Contains(t, doc.Definitions, "swagger.testReport")
		assert.Contains(t, doc.Definitions, "swagger.testUser")
	})

	t.Run("stops at the first error", func(t *testing.T) {
		bad := decl.NewService("api.Bad").Path("/bad")
		bad.Method("get").GET().Request(decl.Token[string]{})

		doc, err := Compile([]*decl.Service{usersService().Service(), bad.Service()})
		assert.ErrorIs(t, err, ErrUnsupportedShape)
		require.NotNil(t, doc)
		assert.NotNil(t, doc.Operation("/users", "get"))
	})
}
