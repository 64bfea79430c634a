package diffmap

import (
	"reflect"
	"strings"
)

// Filter is a set of allowed dot-notation paths. An empty filter allows
// everything.
type Filter map[string]bool

// NewFilter returns a filter allowing the given paths.
func NewFilter(paths ...string) Filter {
	f := make(Filter, len(paths))
	for _, path := range paths {
		f[path] = true
	}
	return f
}

// Allows reports whether path, or one of its ancestors, is in the filter.
func (f Filter) Allows(path string) bool {
	if len(f) == 0 {
		return true
	}
	for {
		if f[path] {
			return true
		}
		i := strings.LastIndexByte(path, '.')
		if i < 0 {
			return false
		}
		path = path[:i]
	}
}

// under returns a copy of f with every path joined to prefix.
func (f Filter) under(prefix string) Filter {
	if prefix == "" || len(f) == 0 {
		return f
	}
	out := make(Filter, len(f))
	for path, ok := range f {
		if ok {
			out[Join(path, prefix)] = true
		}
	}
	return out
}

// Minify drops every instruction of u whose path f does not allow. Buckets
// left empty are removed. An empty filter returns u unchanged.
func Minify(u *Update, f Filter) *Update {
	if u == nil {
		return &Update{}
	}
	if len(f) == 0 {
		return u
	}

	out := &Update{}
	u.Set.Range(func(path string, value any) bool {
		if f.Allows(path) {
			out.MarkSet(path, value)
		}
		return true
	})
	u.Unset.Range(func(path string, _ any) bool {
		if f.Allows(path) {
			out.MarkUnset(path)
		}
		return true
	})
	return out
}

// filterOf converts a map with string keys into a filter. A key is allowed
// when its value is truthy (true, non-zero, non-empty, non-nil); falsy keys
// are kept as false entries.
func filterOf(v any) (Filter, bool) {
	rv := indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	f := make(Filter, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		f[iter.Key().String()] = truthy(iter.Value())
	}
	return f, true
}

func truthy(rv reflect.Value) bool {
	rv = indirect(rv)
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	if KindOf(rv.Interface()) == KindNumber {
		return toNumber(rv.Interface()).float() != 0
	}
	return true
}
