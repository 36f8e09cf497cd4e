package graceful

import (
	"context"
	"net/http"
	"net/url"
)

// Meta carries out-of-band response metadata: echoed parameters, pagination
// links, and arbitrary handler-supplied diagnostics. A fresh Meta is built
// for every dispatch.
type Meta map[string]any

// Request carries all per-request state through the dispatch pipeline. It is
// constructed fresh per call and never stored on the resource, so a single
// resource instance is safe to share across concurrent requests.
type Request struct {
	// Params is the validated parameter mapping from the query string.
	Params ParamMap
	// Meta is pre-populated with {"params": Params}; handlers may add keys.
	Meta Meta
	// Validated is the decoded object dict for mutating verbs with a
	// serializer configured; nil otherwise.
	Validated ObjectDict
	// Route holds URL template captures supplied by the host transport.
	Route map[string]string
}

// Handler is the application callback invoked once parsing and validation
// succeed. It returns a domain object, a sequence of domain objects, or nil
// for bodyless success. Errors it returns propagate to the host unmodified.
type Handler func(ctx context.Context, req *Request) (any, error)

// Envelope is the top-level success response shape. Content is omitted for
// bodyless success.
type Envelope struct {
	Content any  `json:"content,omitempty"`
	Meta    Meta `json:"meta"`
}

// ResourceKind tags whether a resource represents a single object or a list.
type ResourceKind string

// Resource kinds, reported by self-description.
const (
	KindObject ResourceKind = "object"
	KindList   ResourceKind = "list"
)

// Resource orchestrates one request lifecycle: parameter resolution, body
// decoding and validation, handler invocation, and response assembly. A
// resource holds only immutable configuration and no per-request state, so
// one instance per route is shared across all concurrent requests.
type Resource struct {
	name       string
	details    string
	kind       ResourceKind
	params     *Params
	serializer *Serializer
	handlers   map[string]Handler
}

// ResourceOption configures a Resource at construction time.
type ResourceOption func(*Resource) error

// WithDetails sets the resource's verbose description, used by Describe.
func WithDetails(details string) ResourceOption {
	return func(r *Resource) error {
		r.details = details
		return nil
	}
}

// WithParams binds a parameter set to the resource.
func WithParams(params *Params) ResourceOption {
	return func(r *Resource) error {
		r.params = params
		return nil
	}
}

// WithSerializer binds a serializer to the resource.
func WithSerializer(s *Serializer) ResourceOption {
	return func(r *Resource) error {
		r.serializer = s
		return nil
	}
}

// WithRetrieve installs the GET handler for a single-object resource.
func WithRetrieve(h Handler) ResourceOption {
	return func(r *Resource) error {
		if _, ok := r.handlers[http.MethodGet]; ok {
			return configErrorf("resource %q already has a GET handler", r.name)
		}
		r.handlers[http.MethodGet] = h
		r.kind = KindObject
		return nil
	}
}

// WithList installs the GET handler for a list resource. Handler results are
// encoded element-wise.
func WithList(h Handler) ResourceOption {
	return func(r *Resource) error {
		if _, ok := r.handlers[http.MethodGet]; ok {
			return configErrorf("resource %q already has a GET handler", r.name)
		}
		r.handlers[http.MethodGet] = h
		r.kind = KindList
		return nil
	}
}

// WithCreate installs the POST handler. The request body is decoded and
// validated with the serializer before the handler runs.
func WithCreate(h Handler) ResourceOption {
	return func(r *Resource) error {
		r.handlers[http.MethodPost] = h
		return nil
	}
}

// WithUpdate installs the PUT handler (full update).
func WithUpdate(h Handler) ResourceOption {
	return func(r *Resource) error {
		r.handlers[http.MethodPut] = h
		return nil
	}
}

// WithPatch installs the PATCH handler (partial update: fields absent from
// the body are not errors).
func WithPatch(h Handler) ResourceOption {
	return func(r *Resource) error {
		r.handlers[http.MethodPatch] = h
		return nil
	}
}

// WithDelete installs the DELETE handler.
func WithDelete(h Handler) ResourceOption {
	return func(r *Resource) error {
		r.handlers[http.MethodDelete] = h
		return nil
	}
}

// NewResource builds an immutable resource. Configuration problems (for
// example two GET handlers) surface here, at bootstrap.
func NewResource(name string, opts ...ResourceOption) (*Resource, error) {
	r := &Resource{
		name:     name,
		kind:     KindObject,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustResource is like NewResource but panics on configuration errors.
func MustResource(name string, opts ...ResourceOption) *Resource {
	r, err := NewResource(name, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Kind reports whether the resource represents a single object or a list.
func (r *Resource) Kind() ResourceKind { return r.kind }

// Params returns the parameter set bound to the resource, nil if none.
func (r *Resource) Params() *Params { return r.params }

// Serializer returns the serializer bound to the resource, nil if none.
func (r *Resource) Serializer() *Serializer { return r.serializer }

// verbOrder fixes the order verbs appear in Allowed and Describe output.
var verbOrder = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Allowed returns the verbs this resource responds to, in a fixed canonical
// order, always ending with OPTIONS (self-description is always available).
func (r *Resource) Allowed() []string {
	verbs := make([]string, 0, len(r.handlers)+1)
	for _, v := range verbOrder {
		if _, ok := r.handlers[v]; ok {
			verbs = append(verbs, v)
		}
	}
	return append(verbs, http.MethodOptions)
}

// mutating reports whether the verb carries a request body to decode.
func mutating(verb string) bool {
	return verb == http.MethodPost || verb == http.MethodPut || verb == http.MethodPatch
}

// Dispatch runs one request through the pipeline: resolve the query string,
// decode and validate the body for mutating verbs, invoke the handler, and
// assemble the {content, meta} envelope. Parameter and validation errors are
// returned before the handler runs; handler errors are returned as-is. The
// body is the already-decoded raw mapping produced by a body codec; it is
// ignored for non-mutating verbs and when no serializer is configured.
func (r *Resource) Dispatch(ctx context.Context, verb string, query url.Values, body map[string]any, route map[string]string) (*Envelope, error) {
	handler, ok := r.handlers[verb]
	if !ok {
		return nil, Errorf(http.StatusMethodNotAllowed, "method %s not allowed", verb)
	}

	params, err := r.params.Resolve(query)
	if err != nil {
		return nil, err
	}

	var validated ObjectDict
	if mutating(verb) && r.serializer != nil {
		if body == nil {
			body = map[string]any{}
		}
		validated, err = r.serializer.Decode(body, verb == http.MethodPatch)
		if err != nil {
			return nil, err
		}
	}

	meta := Meta{"params": params}

	result, err := handler(ctx, &Request{
		Params:    params,
		Meta:      meta,
		Validated: validated,
		Route:     route,
	})
	if err != nil {
		return nil, err
	}

	content, err := r.encodeResult(result)
	if err != nil {
		return nil, err
	}

	return &Envelope{Content: content, Meta: meta}, nil
}

// encodeResult serializes the handler's return value: element-wise when the
// result is a sequence, pass-through when no serializer is configured, and
// nil (content omitted) when the handler returned nothing.
func (r *Resource) encodeResult(result any) (any, error) {
	if result == nil {
		return nil, nil
	}
	if r.serializer == nil {
		return result, nil
	}

	if items, err := asSequence(result); err == nil {
		encoded := make([]*Rep, len(items))
		for i, item := range items {
			rep, err := r.serializer.Encode(item)
			if err != nil {
				return nil, err
			}
			encoded[i] = rep
		}
		return encoded, nil
	}

	return r.serializer.Encode(result)
}
