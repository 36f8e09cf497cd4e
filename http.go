package graceful

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// API is a thin net/http host for resources. It owns the transport-side
// collaborators the core stays away from: routing, body codecs, content
// negotiation, and the response sink. It implements http.Handler.
type API struct {
	mux        *http.ServeMux
	middleware []Middleware
	registry   *codecRegistry
	extra      []Codec

	mu sync.Mutex
}

// APIOption configures an API.
type APIOption func(*API)

// WithCodec registers an additional body codec alongside the built-in JSON
// and CBOR codecs.
func WithCodec(c Codec) APIOption {
	return func(a *API) {
		a.extra = append(a.extra, c)
	}
}

// NewAPI creates a new API host with the given options.
func NewAPI(opts ...APIOption) *API {
	a := &API{mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(a)
	}
	a.registry = newCodecRegistry(a.extra)
	return a
}

// Use adds middleware to the API. Middleware is applied in the order added.
func (a *API) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(a.mux)
	for i := len(a.middleware) - 1; i >= 0; i-- {
		handler = a.middleware[i](handler)
	}
	handler.ServeHTTP(w, r)
}

// ListenAndServe starts an HTTP server on the given address. It blocks until
// the context is cancelled, then shuts down gracefully.
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Mount registers a resource at the given http.ServeMux pattern. One handler
// is registered per allowed verb, plus an OPTIONS handler serving the
// resource's self-description. URL template captures ({name} segments) are
// passed to handlers through Request.Route.
func (a *API) Mount(pattern string, r *Resource) {
	a.mu.Lock()
	defer a.mu.Unlock()

	wildcards := wildcardNames(pattern)

	for _, verb := range r.Allowed() {
		if verb == http.MethodOptions {
			continue
		}
		a.mux.Handle(verb+" "+pattern, a.resourceHandler(r, wildcards))
	}
	a.mux.Handle(http.MethodOptions+" "+pattern, a.describeHandler(r, pattern))
}

// resourceHandler adapts one resource to net/http: it decodes the body with
// the negotiated codec, runs Dispatch, and writes the envelope or the
// structured error.
func (a *API) resourceHandler(r *Resource, wildcards []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		if mutating(req.Method) {
			data, err := io.ReadAll(req.Body)
			if err != nil {
				a.writeError(w, Error(http.StatusBadRequest, "could not read request body"))
				return
			}
			if len(data) > 0 {
				dec, ok := a.registry.decoderFor(req.Header.Get("Content-Type"))
				if !ok {
					a.writeError(w, Error(http.StatusUnsupportedMediaType, "unsupported content type"))
					return
				}
				if err := dec.Unmarshal(data, &body); err != nil {
					a.writeError(w, Errorf(http.StatusBadRequest, "malformed request body: %v", err))
					return
				}
			}
		}

		route := make(map[string]string, len(wildcards))
		for _, name := range wildcards {
			route[name] = req.PathValue(name)
		}

		env, err := r.Dispatch(req.Context(), req.Method, req.URL.Query(), body, route)
		if err != nil {
			a.writeError(w, err)
			return
		}

		codec, ok := a.registry.negotiate(req.Header.Get("Accept"))
		if !ok {
			a.writeError(w, Error(http.StatusNotAcceptable, "no acceptable content type"))
			return
		}

		status := http.StatusOK
		switch {
		case req.Method == http.MethodPost:
			status = http.StatusCreated
		case req.Method == http.MethodDelete && env.Content == nil:
			w.WriteHeader(http.StatusNoContent)
			return
		}

		data, err := codec.Marshal(env)
		if err != nil {
			a.writeError(w, Errorf(http.StatusInternalServerError, "response encoding failed: %v", err))
			return
		}

		w.Header().Set("Content-Type", codec.ContentType())
		w.WriteHeader(status)
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write(data)
	})
}

// describeHandler serves the resource self-description on OPTIONS, as JSON
// by default or YAML when the Accept header asks for it.
func (a *API) describeHandler(r *Resource, pattern string) http.Handler {
	path := routePath(pattern)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", strings.Join(r.Allowed(), ", "))

		if strings.Contains(req.Header.Get("Accept"), "yaml") {
			w.Header().Set("Content-Type", "application/yaml")
			//nolint:errcheck,gosec // best-effort after WriteHeader
			WriteDescriptionYAML(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(r.Describe(path))
	})
}

// writeError writes the structured {title, description} error body. Errors
// are always JSON, regardless of negotiated response codec.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status, env := envelopeError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(env)
}

// routePath strips the method-pattern niceties ({$}) so self-description
// shows a clean route template.
func routePath(pattern string) string {
	return strings.TrimSuffix(pattern, "{$}")
}

// wildcardNames extracts the {name} capture names from a ServeMux pattern.
func wildcardNames(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		name = strings.TrimSuffix(name, "...")
		if name == "$" || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
