// Package graceful is a declarative toolkit for describing REST resource
// schemas and moving data between the wire and your domain objects. Query
// parameters and representation fields are declared once, as explicit ordered
// descriptors, and the same metadata drives runtime coercion, validation, and
// machine-readable self-description.
//
// Parameters describe query-string inputs:
//
//	params := graceful.MustParams(
//	    graceful.StringParam("breed", "filter cats by breed"),
//	    graceful.IntParam("limit", "maximum number of results").WithDefault("10"),
//	)
//
// Serializers describe representations as an ordered list of fields:
//
//	cat := graceful.MustSerializer([]graceful.Field{
//	    graceful.IntField("id", "cat identification number").AsReadOnly(),
//	    graceful.RawField("name", "cat name"),
//	    graceful.RawField("breed", "official breed name"),
//	})
//
// Resources tie parameters, a serializer, and application handlers together
// into a dispatch pipeline: resolve parameters, decode and validate the body,
// invoke the handler, encode the result, and wrap it in a {content, meta}
// envelope. Parameter and validation failures are aggregated so a client sees
// every problem in one round trip; handler errors propagate untouched.
//
//	cats := graceful.MustResource("CatList",
//	    graceful.WithParams(params),
//	    graceful.WithSerializer(cat),
//	    graceful.WithList(listCats),
//	    graceful.WithCreate(createCat),
//	)
//
// The core performs no I/O. A thin net/http adapter (API) is included for
// hosting resources, with pluggable body codecs (JSON, CBOR) and standard
// func(http.Handler) http.Handler middleware.
package graceful
