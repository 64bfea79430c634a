package diffmap

import (
	"bytes"
	"reflect"
)

// Clone returns a deep copy of a document value. Maps with string keys are
// normalised to [Document] and slices of any element type to []any; scalars
// and dates are returned as is.
func Clone(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Document:
		if x == nil {
			return x
		}
		out := make(Document, len(x))
		for key, value := range x {
			out[key] = Clone(value)
		}
		return out
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, value := range x {
			out[i] = Clone(value)
		}
		return out
	case []byte:
		return bytes.Clone(x)
	}

	switch KindOf(v) {
	case KindObject:
		doc, _ := asDocument(v)
		return Clone(doc)
	case KindArray:
		rv := indirect(reflect.ValueOf(v))
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// CloneDocument returns a deep copy of doc.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	return Clone(doc).(Document)
}
