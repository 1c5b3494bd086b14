package swagger

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/specc/decl"
)

const successDescription = "successful operation"

// buildOperation assembles the operation for a method. Hidden operations
// yield nil.
func (r *Reader) buildOperation(svc *decl.Service, m *decl.Method) (*Operation, error) {
	meta := m.Operation
	if meta.Hidden {
		return nil, nil
	}

	op := &Operation{
		OperationID: meta.Nickname,
		Summary:     meta.Summary,
		Description: meta.Notes,
		Responses:   make(map[string]*Response),
		Deprecated:  m.Deprecated,
	}
	if op.OperationID == "" {
		op.OperationID = m.Name
	}

	headers, err := r.responseHeaders(svc, m, meta.ResponseHeaders)
	if err != nil {
		return nil, err
	}

	for _, name := range meta.Authorizations {
		op.addSecurity(name)
		r.doc.AddSecurity(name)
	}

	// The explicit response type wins; typed JSON endpoints fall back to the
	// declared return type.
	payload := meta.Response
	if payload.IsVoid() && m.JSONRequest && !m.IsSubResource() {
		payload = m.Returns.Payload()
	}
	if payload != nil && payload.Kind == decl.KindToken {
		payload = payload.Elem
	}
	if !payload.IsVoid() {
		if schema := r.payloadSchema(payload); schema != nil {
			op.Responses["200"] = &Response{
				Description: successDescription,
				Schema:      wrapContainer(schema, meta.ResponseContainer),
				Headers:     headers,
			}
		}
	}

	for _, resp := range m.Responses {
		rh, err := r.responseHeaders(svc, m, resp.Headers)
		if err != nil {
			return nil, err
		}
		out := &Response{
			Description: responseDescription(resp.Code, resp.Message),
			Headers:     rh,
		}
		if !resp.Type.IsVoid() {
			out.Schema = r.payloadSchema(resp.Type)
		}
		if resp.Code == 0 {
			op.Responses["default"] = out
		} else {
			op.Responses[strconv.Itoa(resp.Code)] = out
		}
	}

	params, err := r.classify(svc, m)
	if err != nil {
		return nil, err
	}
	op.Parameters = params

	if len(op.Responses) == 0 {
		op.Responses["default"] = &Response{Description: successDescription}
	}
	return op, nil
}

// payloadSchema resolves a response payload. Primitive payloads are inline;
// object payloads reference their registered model, falling back to an
// inline schema when no named model exists.
func (r *Reader) payloadSchema(t *decl.Type) *Schema {
	t = unwrap(t)
	if !r.resolver.IsPrimitive(t) {
		if models := r.resolver.ResolveModel(t); models[t.Name] != nil {
			return refSchema(t.Name)
		}
	}
	return r.resolver.ResolveProperty(t)
}

// wrapContainer applies a response container hint.
func wrapContainer(s *Schema, container string) *Schema {
	switch {
	case strings.EqualFold(container, decl.ContainerList):
		return &Schema{Type: "array", Items: s}
	case strings.EqualFold(container, decl.ContainerMap):
		return &Schema{Type: "object", AdditionalProperties: s}
	}
	return s
}

// responseHeaders converts declared response headers, skipping unnamed and
// void entries.
func (r *Reader) responseHeaders(svc *decl.Service, m *decl.Method, declared []decl.ResponseHeader) (map[string]*Header, error) {
	var out map[string]*Header
	for _, h := range declared {
		if h.Name == "" || h.Type.IsVoid() {
			continue
		}
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return nil, &Error{
				Kind:    InvalidDeclaration,
				Service: svc.Name,
				Method:  m.Name,
				Message: fmt.Sprintf("invalid response header name %q", h.Name),
			}
		}

		schema := r.resolver.ResolveProperty(h.Type)
		if schema == nil {
			continue
		}
		schema = wrapContainer(schema, h.Container)

		header := &Header{
			Description: h.Description,
			Type:        schema.Type,
			Format:      schema.Format,
			Items:       schema.Items,
		}
		if schema.Type == "array" && schema.Items != nil && !isSimpleType(schema.Items.Type) {
			header.Items = &Schema{Type: "string"}
		}
		if (!isSimpleType(header.Type) && header.Type != "array") || header.Type == "file" {
			r.logger.Debug("Response header is not a primitive, documenting it as string",
				zap.String("service", svc.Name), zap.String("method", m.Name), zap.String("header", h.Name))
			header.Type, header.Format, header.Items = "string", "", nil
		}

		if out == nil {
			out = make(map[string]*Header)
		}
		out[h.Name] = header
	}
	return out, nil
}

// responseDescription returns the declared message, falling back to the
// standard status text.
func responseDescription(code int, message string) string {
	if message != "" {
		return message
	}
	if code == 0 {
		return "default response"
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "response " + strconv.Itoa(code)
}

// addSecurity appends a requirement for the named scheme once.
func (op *Operation) addSecurity(name string) {
	if name == "" {
		return
	}
	for _, req := range op.Security {
		if _, ok := req[name]; ok {
			return
		}
	}
	op.Security = append(op.Security, SecurityRequirement{name: {}})
}
