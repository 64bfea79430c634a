package diffmap

import (
	"encoding/json"
	"reflect"
	"time"
)

// Kind is the coarse type of a document value. Two values of different kinds
// are never compared field by field.
type Kind uint8

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	KindDate
	KindBinary
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindBinary:
		return "binary"
	default:
		return "other"
	}
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// KindOf classifies v. Absent values, untyped nil and typed nil maps, slices
// and pointers are all [KindNull].
func KindOf(v any) Kind {
	// common decoder output first, avoids reflection
	switch x := v.(type) {
	case nil:
		return KindNull
	case Document:
		if x == nil {
			return KindNull
		}
		return KindObject
	case []any:
		if x == nil {
			return KindNull
		}
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBool
	case float64, int, int64, int32, float32, uint64, uint32, json.Number:
		return KindNumber
	case time.Time:
		return KindDate
	}
	return kindOfValue(reflect.ValueOf(v))
}

func kindOfValue(rv reflect.Value) Kind {
	switch rv.Kind() {
	case reflect.Invalid:
		return KindNull
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		return kindOfValue(rv.Elem())
	case reflect.Map:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().Key().Kind() == reflect.String {
			return KindObject
		}
	case reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindBinary
		}
		return KindArray
	case reflect.Array:
		return KindArray
	case reflect.String:
		if rv.Type() == jsonNumberType {
			return KindNumber
		}
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return KindDate
		}
	}
	return KindOther
}

// IsDocument reports whether v is a non-nil map with string keys.
func IsDocument(v any) bool {
	return KindOf(v) == KindObject
}

// asDocument returns v as a [Document]. Named map types with string keys
// (e.g. bson.M) are copied into a fresh Document.
func asDocument(v any) (Document, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case Document:
		return x, x != nil
	}
	rv := indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	doc := make(Document, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		doc[iter.Key().String()] = iter.Value().Interface()
	}
	return doc, true
}

// indirect follows pointers and interfaces until it reaches a concrete value.
func indirect(rv reflect.Value) reflect.Value {
	for (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}
