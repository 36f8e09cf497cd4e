package graceful

import (
	"mime"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
)

// Codec translates between raw body bytes and decoded values. The core
// pipeline only ever sees already-decoded mappings; codecs are the
// content-type collaborators that own the wire encoding.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// jsonCodec is the default codec.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// cborCodec handles RFC 8949 Concise Binary Object Representation.
type cborCodec struct{}

func (cborCodec) ContentType() string { return "application/cbor" }

func (cborCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return cbor.Unmarshal(data, v)
}

// codecRegistry holds all registered codecs. Index 0 is always JSON (the
// default for empty Accept and Content-Type headers).
type codecRegistry struct {
	codecs []Codec
}

func newCodecRegistry(user []Codec) *codecRegistry {
	cr := &codecRegistry{codecs: make([]Codec, 0, 2+len(user))}
	cr.codecs = append(cr.codecs, jsonCodec{}, cborCodec{})
	cr.codecs = append(cr.codecs, user...)
	return cr
}

// negotiate picks a codec for the response based on the Accept header.
// Returns (JSON, true) for empty or */* accept values and (nil, false) when
// an explicit Accept has no match.
func (cr *codecRegistry) negotiate(accept string) (Codec, bool) {
	if accept == "" {
		return cr.codecs[0], true
	}

	var best Codec
	bestQ := -1.0

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= bestQ {
			continue
		}

		if mediaType == "*/*" {
			best, bestQ = cr.codecs[0], q
			continue
		}
		for _, c := range cr.codecs {
			if c.ContentType() == mediaType {
				best, bestQ = c, q
				break
			}
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

// decoderFor returns the codec matching the given Content-Type. Returns
// (JSON, true) for an empty content type and (nil, false) when the content
// type is present but unrecognized.
func (cr *codecRegistry) decoderFor(contentType string) (Codec, bool) {
	if contentType == "" {
		return cr.codecs[0], true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}

	for _, c := range cr.codecs {
		if c.ContentType() == mediaType {
			return c, true
		}
	}
	return nil, false
}
