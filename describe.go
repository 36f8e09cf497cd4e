package graceful

import (
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Describe renders the machine-readable self-description of the resource:
// its name, details, allowed methods, route template, and the description of
// every parameter and field in declaration order. It is a pure function of
// the resource configuration: it never depends on request state and repeated
// calls produce identical output.
//
// The route template is supplied by the host, since the core does not own
// routing.
func (r *Resource) Describe(path string) *Rep {
	d := NewRep()
	d.Set("name", r.name)
	if r.details != "" {
		d.Set("details", r.details)
	} else {
		d.Set("details", "This resource does not have description yet")
	}
	d.Set("methods", r.Allowed())
	d.Set("path", path)
	d.Set("params", r.params.describe())
	if r.serializer != nil {
		d.Set("fields", r.serializer.describe())
	} else {
		d.Set("fields", nil)
	}
	d.Set("type", string(r.kind))
	return d
}

// WriteDescription writes the resource description as indented JSON.
func WriteDescription(w io.Writer, r *Resource, path string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Describe(path))
}

// WriteDescriptionYAML writes the resource description as YAML.
func WriteDescriptionYAML(w io.Writer, r *Resource, path string) error {
	return yaml.NewEncoder(w).Encode(r.Describe(path))
}
