// Package diffmap computes the MongoDB-style update that would turn document
// [a] into document [b].
//
// An update holds two buckets: "$set" maps dot-notation paths to their new
// value and "$unset" lists the paths that disappeared. Nested documents are
// compared field by field, everything else (arrays, dates, scalars) is
// replaced as a whole.
//
//	u := diffmap.ComputeUpdate(
//		diffmap.Document{"a": diffmap.Document{"b": 1, "c": 2}},
//		diffmap.Document{"a": diffmap.Document{"b": 2}},
//	)
//	// u is {"$set": {"a.b": 2}, "$unset": {"a.c": 1}}
//
// Documents are expected to be trees. Cyclic inputs are not supported; use
// [WithMaxDepth] when the input is untrusted.
package diffmap

// Document is a decoded key/value document, e.g. the result of unmarshalling
// a JSON object into an [any].
type Document = map[string]any

// Operators used as top-level keys of an encoded [Update].
const (
	OpSet   = "$set"
	OpUnset = "$unset"
)

// Marker is the value stored for every path in the "$unset" bucket.
const Marker = 1
