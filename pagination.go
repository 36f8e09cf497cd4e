package graceful

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// paginationConfig holds the tunables of the pagination decorator.
type paginationConfig struct {
	defaultPageSize int
	maxPageSize     int // 0 means no maximum
}

// PaginationOption configures Paginated.
type PaginationOption func(*paginationConfig)

// WithDefaultPageSize sets the page size used when the client supplies none.
func WithDefaultPageSize(n int) PaginationOption {
	return func(c *paginationConfig) {
		c.defaultPageSize = n
	}
}

// WithMaxPageSize caps the page size a client may request.
func WithMaxPageSize(n int) PaginationOption {
	return func(c *paginationConfig) {
		c.maxPageSize = n
	}
}

// Paginated decorates a list resource with page/page_size parameters and
// next/prev meta computation. The original resource is not modified.
//
// Two parameters are injected and validated through the standard chain:
// page (non-negative, default 0) and page_size (positive, default and
// maximum configurable). After the GET handler runs, meta gains "page" and
// "page_size"; "prev" is the query string for the previous page (omitted at
// page 0) and "next" is the query string for the following page, emitted
// only when the handler set meta["has_more"] = true. Both echo every other
// resolved parameter. The computation is pure string manipulation over
// already-resolved parameters.
func Paginated(r *Resource, opts ...PaginationOption) (*Resource, error) {
	cfg := paginationConfig{defaultPageSize: 10}
	for _, opt := range opts {
		opt(&cfg)
	}

	sizeValidators := []Validator{Min(1)}
	if cfg.maxPageSize > 0 {
		sizeValidators = append(sizeValidators, Max(float64(cfg.maxPageSize)))
	}

	params, err := r.params.Extend(
		IntParam("page_size", "Specifies number of result entries in single response").
			WithDefault(strconv.Itoa(cfg.defaultPageSize)).
			WithValidators(sizeValidators...),
		IntParam("page", "Specifies number of results page for response. Page count starts from 0").
			WithDefault("0").
			WithValidators(Min(0)),
	)
	if err != nil {
		return nil, err
	}

	handlers := make(map[string]Handler, len(r.handlers))
	for verb, h := range r.handlers {
		handlers[verb] = h
	}
	if h, ok := handlers[http.MethodGet]; ok {
		handlers[http.MethodGet] = paginate(h)
	}

	return &Resource{
		name:       r.name,
		details:    r.details,
		kind:       r.kind,
		params:     params,
		serializer: r.serializer,
		handlers:   handlers,
	}, nil
}

// MustPaginated is like Paginated but panics on configuration errors.
func MustPaginated(r *Resource, opts ...PaginationOption) *Resource {
	p, err := Paginated(r, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// paginate wraps a list handler so pagination meta is computed after it
// returns, once meta["has_more"] is known.
func paginate(h Handler) Handler {
	return func(ctx context.Context, req *Request) (any, error) {
		result, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		addPaginationMeta(req.Params, req.Meta)
		return result, nil
	}
}

// addPaginationMeta records the current page coordinates and the prev/next
// query strings on meta.
func addPaginationMeta(params ParamMap, meta Meta) {
	page, _ := params["page"].(int64)
	size, _ := params["page_size"].(int64)

	meta["page"] = page
	meta["page_size"] = size

	if page > 0 {
		meta["prev"] = pageQuery(params, page-1)
	}
	if more, ok := meta["has_more"].(bool); ok && more {
		meta["next"] = pageQuery(params, page+1)
	}
}

// pageQuery renders the query string selecting the given page, echoing every
// other resolved parameter.
func pageQuery(params ParamMap, page int64) string {
	q := url.Values{}
	for name, value := range params {
		if name == "page" {
			continue
		}
		appendQueryValues(q, name, value)
	}
	q.Set("page", strconv.FormatInt(page, 10))
	return q.Encode()
}

// appendQueryValues renders a resolved parameter value back into query
// string form, expanding Many values into repeated keys.
func appendQueryValues(q url.Values, name string, value any) {
	if items, err := asSequence(value); err == nil {
		for _, item := range items {
			q.Add(name, fmt.Sprint(item))
		}
		return
	}
	q.Add(name, fmt.Sprint(value))
}
