// Package decl holds the resolved declaration metadata consumed by the
// specification compiler in package swagger.
//
// A Service is a set of routable methods sharing a base path, tags and
// authorizations. Each exposed Method carries Operation metadata, its
// arguments (Param), optional implicit parameters, an explicit response-code
// table and a return Type. Types are semantic descriptors rather than Go
// types, so declarations can come from reflection (Loader, TypeOf), from
// YAML manifests (package manifest) or be written by hand.
//
// # Declaring Services in Go
//
//	type Report struct {
//	    ID    int64  `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	reports := decl.NewService("api.Reports").Path("/reports").Tags("reports")
//
//	reports.Method("get").GET().Path("/{id:int}").
//	    Summary("Fetch a report").
//	    Implicit(decl.ImplicitParam{Name: "id", In: "path", DataType: "integer", Required: true}).
//	    RawRequest().
//	    JSON().
//	    Returns(decl.Future[Report]{})
//
// # Sub-resources
//
// A method whose return type is another service declaration is a locator:
// the target's operations are nested below the method's path.
//
//	comments := decl.NewService("api.Comments")
//	comments.Method("list").GET().Path("/comments").Response([]Comment{})
//
//	reports.Method("comments").Path("/{id}").SubResource(comments)
package decl
