package swagger

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/vitalvas/specc/decl"
)

const defaultMediaType = "application/json"

// Option configures a Reader.
type Option func(*settings)

type settings struct {
	logger    *zap.Logger
	externals map[string]Primitive
	info      Info
	host      string
	basePath  string
	schemes   []string
	security  map[string]*SecurityScheme
}

// WithLogger sets the logger for recovered problems. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithExternalTypes maps qualified type names to primitives, overriding the
// shape of those types everywhere they appear.
func WithExternalTypes(types map[string]Primitive) Option {
	return func(s *settings) {
		for name, p := range types {
			s.externals[name] = p
		}
	}
}

// WithInfo sets the document info.
func WithInfo(info Info) Option {
	return func(s *settings) { s.info = info }
}

// WithHost sets the document host.
func WithHost(host string) Option {
	return func(s *settings) { s.host = host }
}

// WithBasePath sets the document base path.
func WithBasePath(basePath string) Option {
	return func(s *settings) { s.basePath = basePath }
}

// WithSchemes sets the document transfer protocols.
func WithSchemes(schemes ...string) Option {
	return func(s *settings) { s.schemes = append(s.schemes, schemes...) }
}

// WithSecurityDefinition predeclares a security scheme. Authorization
// names without a predeclared scheme are documented as header API keys.
func WithSecurityDefinition(name string, scheme *SecurityScheme) Option {
	return func(s *settings) { s.security[name] = scheme }
}

// Reader compiles service declarations into a single Document. A Reader
// owns its document and must not be used from several goroutines.
type Reader struct {
	doc      *Document
	resolver *Resolver
	logger   *zap.Logger

	// stack holds the services of the current sub-resource recursion.
	stack []*decl.Service
}

// NewReader creates a Reader with an empty document.
func NewReader(opts ...Option) *Reader {
	s := &settings{
		externals: make(map[string]Primitive),
		security:  make(map[string]*SecurityScheme),
		info:      Info{Title: "API", Version: "1.0.0"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	doc := NewDocument(s.info)
	doc.Host = s.host
	doc.BasePath = s.basePath
	doc.Schemes = s.schemes
	for name, scheme := range s.security {
		if doc.SecurityDefinitions == nil {
			doc.SecurityDefinitions = make(map[string]*SecurityScheme)
		}
		doc.SecurityDefinitions[name] = scheme
	}

	return &Reader{
		doc:      doc,
		resolver: NewResolver(doc, s.externals, s.logger),
		logger:   s.logger,
	}
}

// Document returns the document built so far.
func (r *Reader) Document() *Document {
	return r.doc
}

// Resolver returns the schema resolver writing into the document.
func (r *Reader) Resolver() *Resolver {
	return r.resolver
}

// Read scans a service declaration into the document and returns it.
// Hidden services are skipped unless includeHidden is set. Declaration
// errors stop the scan; operations written before the failure are kept.
func (r *Reader) Read(svc *decl.Service, includeHidden bool) (*Document, error) {
	if err := r.scan(svc, "", includeHidden, nil, nil); err != nil {
		return r.doc, err
	}
	return r.doc, nil
}

// Compile reads every service into one document and verifies that the
// result is complete.
func Compile(services []*decl.Service, opts ...Option) (*Document, error) {
	r := NewReader(opts...)
	for _, svc := range services {
		if _, err := r.Read(svc, false); err != nil {
			return r.doc, err
		}
	}
	if err := r.doc.Check(); err != nil {
		return r.doc, err
	}
	return r.doc, nil
}

func (r *Reader) scan(svc *decl.Service, prefix string, includeHidden bool, inheritedTags []string, inheritedParams []*Parameter) error {
	if svc == nil || (svc.Hidden && !includeHidden) {
		return nil
	}
	if slices.Contains(r.stack, svc) {
		return r.cycleError(svc)
	}
	r.stack = append(r.stack, svc)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	tags := appendUnique(slices.Clone(svc.DeclaredTags()), inheritedTags...)

	for _, m := range svc.Methods {
		if m == nil || m.Operation == nil {
			continue
		}
		if err := r.scanMethod(svc, m, prefix, tags, inheritedParams); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) scanMethod(svc *decl.Service, m *decl.Method, prefix string, tags []string, inheritedParams []*Parameter) error {
	joined, ok := JoinPath(prefix, svc.Path, m.Path)
	if !ok {
		return nil
	}
	tpl, err := ParsePath(joined)
	if err != nil {
		return &Error{Kind: InvalidDeclaration, Service: svc.Name, Method: m.Name, Message: "malformed path", Err: err}
	}

	op, err := r.buildOperation(svc, m)
	if err != nil || op == nil {
		return err
	}

	op.Parameters = inheritParameters(op.Parameters, inheritedParams)
	applyPathTemplate(op, tpl)
	op.Schemes = r.protocols(svc, m)

	if m.IsSubResource() {
		child := m.Returns.Payload().Service
		if err := r.scan(child, tpl.Path, true, tags, op.Parameters); err != nil {
			return err
		}
	}

	for _, tag := range m.Operation.Tags {
		if tag == "" {
			continue
		}
		op.Tags = appendUnique(op.Tags, tag)
		r.doc.AddTag(tag)
	}
	// Declared and inherited tags join the document tag list too, so every
	// tag an operation carries is listed once at the top level.
	for _, tag := range tags {
		op.Tags = appendUnique(op.Tags, tag)
		r.doc.AddTag(tag)
	}

	op.Consumes = mediaTypes(m.Consumes)
	op.Produces = mediaTypes(m.Produces)

	for _, name := range svc.Authorizations {
		op.addSecurity(name)
		r.doc.AddSecurity(name)
	}

	verb := resolveVerb(m)
	replaced, err := r.doc.AddOperation(tpl.Path, verb, op)
	if err != nil {
		return &Error{Kind: InvalidDeclaration, Service: svc.Name, Method: m.Name, Err: err}
	}
	if replaced {
		r.logger.Warn("Replacing operation already registered for path and verb",
			zap.String("path", tpl.Path), zap.String("verb", verb),
			zap.String("service", svc.Name), zap.String("method", m.Name))
	}
	return nil
}

func (r *Reader) cycleError(svc *decl.Service) error {
	start := slices.Index(r.stack, svc)
	names := make([]string, 0, len(r.stack)-start+1)
	for _, s := range r.stack[start:] {
		names = append(names, s.Name)
	}
	names = append(names, svc.Name)

	top := r.stack[len(r.stack)-1]
	return &Error{
		Kind:    CyclicSubResource,
		Service: top.Name,
		Message: strings.Join(names, " -> "),
	}
}

// resolveVerb picks the operation verb: explicit operation metadata, then
// the method marker, then a custom marker, then POST.
func resolveVerb(m *decl.Method) string {
	switch {
	case m.Operation != nil && m.Operation.HTTPMethod != "":
		return strings.ToLower(m.Operation.HTTPMethod)
	case m.Verb != decl.VerbNone:
		return strings.ToLower(string(m.Verb))
	case m.CustomVerb != "":
		return strings.ToLower(m.CustomVerb)
	}
	return "post"
}

// inheritParameters appends copies of the parent parameters that the
// operation does not declare itself. A parent body is dropped when the
// operation has its own.
func inheritParameters(own, inherited []*Parameter) []*Parameter {
	hasBody := slices.ContainsFunc(own, func(p *Parameter) bool { return p.In == "body" })
	for _, p := range inherited {
		if p.In == "body" && hasBody {
			continue
		}
		dup := slices.ContainsFunc(own, func(o *Parameter) bool {
			return o.Name == p.Name && o.In == p.In
		})
		if dup {
			continue
		}
		cp := *p
		own = append(own, &cp)
	}
	return own
}

// applyPathTemplate attaches captured patterns to parameters of the same
// name and declares template variables no parameter covers.
func applyPathTemplate(op *Operation, tpl PathTemplate) {
	for _, p := range op.Parameters {
		if p.In == "body" {
			continue
		}
		if pattern, ok := tpl.Patterns[p.Name]; ok {
			p.Pattern = pattern
		}
	}

	for _, name := range tpl.Vars {
		declared := slices.ContainsFunc(op.Parameters, func(p *Parameter) bool {
			return p.In == "path" && p.Name == name
		})
		if declared {
			continue
		}
		p := &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Type:     "string",
			Pattern:  tpl.Patterns[name],
		}
		if macro, ok := pathMacros[tpl.Macros[name]]; ok {
			p.Type, p.Format = macro.typ, macro.format
		}
		op.Parameters = append(op.Parameters, p)
	}
}

// protocols splits the declared protocol lists into operation schemes.
func (r *Reader) protocols(svc *decl.Service, m *decl.Method) []string {
	var out []string
	for _, entry := range m.Operation.Protocols {
		for part := range strings.SplitSeq(entry, ",") {
			scheme := strings.ToLower(strings.TrimSpace(part))
			switch scheme {
			case "":
			case "http", "https", "ws", "wss":
				out = appendUnique(out, scheme)
			default:
				r.logger.Warn("Skipping unknown protocol",
					zap.String("service", svc.Name), zap.String("method", m.Name), zap.String("protocol", scheme))
			}
		}
	}
	return out
}

func mediaTypes(declared []string) []string {
	var out []string
	for _, t := range declared {
		if t = strings.TrimSpace(t); t != "" {
			out = appendUnique(out, t)
		}
	}
	if len(out) == 0 {
		return []string{defaultMediaType}
	}
	return out
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}
