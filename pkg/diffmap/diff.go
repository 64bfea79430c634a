package diffmap

import "sort"

// Option adjusts how [Diff] compares two documents.
type Option func(cfg *config)

type config struct {
	prefix   string
	filter   Filter
	filtered bool // a non-empty filter was supplied, even if all its entries are false
	maxDepth int
	equal    func(a, b any) bool
	kindOf   func(v any) Kind
}

// WithPrefix prepends prefix to every emitted path, e.g. "items.$" to embed
// the update into a positional array update.
func WithPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.prefix = prefix
	}
}

// WithFilter restricts the result to the given paths (and their
// descendants). Paths are relative to the prefix. Multiple filters are
// merged. An empty filter restricts nothing, a filter whose entries are all
// false allows nothing.
func WithFilter(f Filter) Option {
	return func(cfg *config) {
		if len(f) == 0 {
			return
		}
		cfg.filtered = true
		if cfg.filter == nil {
			cfg.filter = make(Filter, len(f))
		}
		for path, ok := range f {
			if ok {
				cfg.filter[path] = true
			}
		}
	}
}

// WithMaxDepth limits how many levels of nested documents are compared field
// by field. A changed document below the limit is assigned as a whole.
// Zero or less means unlimited.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxDepth = depth
	}
}

// WithEqual replaces the equality predicate, [Equal] by default.
func WithEqual(fn func(a, b any) bool) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.equal = fn
		}
	}
}

// WithClassifier replaces the value classifier, [KindOf] by default.
func WithClassifier(fn func(v any) Kind) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.kindOf = fn
		}
	}
}

// Diff returns the update required to transform oldDoc into newDoc.
// Either side may be nil; values that are not documents have no keys.
// The result never is nil, an update without changes has no buckets.
func Diff(oldDoc, newDoc any, opts ...Option) *Update {
	cfg := &config{equal: Equal, kindOf: KindOf}
	for _, opt := range opts {
		opt(cfg)
	}

	u := &Update{}
	cfg.diff(oldDoc, newDoc, u, cfg.prefix, 0)
	allowed := cfg.filter.under(cfg.prefix)
	if cfg.filtered && len(allowed) == 0 {
		return &Update{}
	}
	return Minify(u, allowed)
}

// ComputeUpdate is the loosely typed entry point of [Diff]. Each extra
// argument is interpreted by its type, in any order:
//   - string: the path prefix
//   - [Filter], map[string]bool, []string or any map with string keys and
//     truthy values: allowed paths
//   - [Option]: applied as is
//
// Other arguments are ignored.
func ComputeUpdate(oldDoc, newDoc any, args ...any) *Update {
	opts := make([]Option, 0, len(args))
	for _, arg := range args {
		switch x := arg.(type) {
		case nil:
		case string:
			opts = append(opts, WithPrefix(x))
		case Option:
			opts = append(opts, x)
		case Filter:
			opts = append(opts, WithFilter(x))
		case map[string]bool:
			opts = append(opts, WithFilter(x))
		case []string:
			opts = append(opts, WithFilter(NewFilter(x...)))
		default:
			if f, ok := filterOf(x); ok {
				opts = append(opts, WithFilter(f))
			}
		}
	}
	return Diff(oldDoc, newDoc, opts...)
}

// Join appends key to prefix using dot-notation.
func Join(key, prefix string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// diff walks a and b and records instructions on u. Removals are detected
// first and never recurse: a removed sub-document is unset at its own path.
func (cfg *config) diff(a, b any, u *Update, prefix string, depth int) {
	oldDoc, _ := asDocument(a)
	newDoc, _ := asDocument(b)

	for _, key := range sortedKeys(oldDoc) {
		if cfg.kindOf(newDoc[key]) == KindNull {
			u.MarkUnset(Join(key, prefix))
		}
	}

	for _, key := range sortedKeys(newDoc) {
		oldValue, newValue := oldDoc[key], newDoc[key]
		newKind := cfg.kindOf(newValue)
		if newKind == KindNull {
			continue
		}
		if cfg.equal(oldValue, newValue) {
			continue
		}

		path := Join(key, prefix)
		switch {
		case cfg.kindOf(oldValue) != newKind:
			// type changed, nested comparison is meaningless
			u.MarkSet(path, newValue)
		case newKind == KindObject && (cfg.maxDepth <= 0 || depth+1 < cfg.maxDepth):
			cfg.diff(oldValue, newValue, u, path, depth+1)
		default:
			u.MarkSet(path, newValue)
		}
	}
}

func sortedKeys(doc Document) []string {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
