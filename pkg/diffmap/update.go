package diffmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Bucket is a path -> value mapping that remembers insertion order.
// The zero value is not usable, buckets are created by [Update].
type Bucket struct {
	paths  []string
	values map[string]any
}

func newBucket() *Bucket {
	return &Bucket{values: make(map[string]any)}
}

// Len returns the number of paths in the bucket. It is safe on a nil bucket.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.paths)
}

// Paths returns the paths in insertion order.
func (b *Bucket) Paths() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.paths))
	copy(out, b.paths)
	return out
}

// Get returns the value stored at path.
func (b *Bucket) Get(path string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[path]
	return v, ok
}

// Has reports whether path is in the bucket.
func (b *Bucket) Has(path string) bool {
	_, ok := b.Get(path)
	return ok
}

// Range calls fn for every entry in insertion order until fn returns false.
func (b *Bucket) Range(fn func(path string, value any) bool) {
	if b == nil {
		return
	}
	for _, path := range b.paths {
		if !fn(path, b.values[path]) {
			return
		}
	}
}

// Map returns the bucket as a plain (unordered) map.
func (b *Bucket) Map() map[string]any {
	if b == nil {
		return nil
	}
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

func (b *Bucket) put(path string, value any) {
	if _, exists := b.values[path]; !exists {
		b.paths = append(b.paths, path)
	}
	b.values[path] = value
}

func (b *Bucket) remove(path string) bool {
	if b == nil {
		return false
	}
	if _, exists := b.values[path]; !exists {
		return false
	}
	delete(b.values, path)
	for i, p := range b.paths {
		if p == path {
			b.paths = append(b.paths[:i], b.paths[i+1:]...)
			break
		}
	}
	return true
}

// MarshalJSON encodes the bucket as a JSON object, keeping insertion order.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range b.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(b.values[path])
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Update is the set of instructions that transforms one document into
// another. A nil bucket means no instruction of that kind.
type Update struct {
	Set   *Bucket
	Unset *Bucket
}

// MarkSet records that path must be assigned value. A pending unset of the
// same path is dropped.
func (u *Update) MarkSet(path string, value any) {
	if u.Unset.remove(path) && u.Unset.Len() == 0 {
		u.Unset = nil
	}
	if u.Set == nil {
		u.Set = newBucket()
	}
	u.Set.put(path, value)
}

// MarkUnset records that path must be removed. A pending assignment of the
// same path is dropped.
func (u *Update) MarkUnset(path string) {
	if u.Set.remove(path) && u.Set.Len() == 0 {
		u.Set = nil
	}
	if u.Unset == nil {
		u.Unset = newBucket()
	}
	u.Unset.put(path, Marker)
}

// IsEmpty reports whether the update carries no instruction.
func (u *Update) IsEmpty() bool {
	return u == nil || (u.Set.Len() == 0 && u.Unset.Len() == 0)
}

// Len returns the total number of instructions.
func (u *Update) Len() int {
	if u == nil {
		return 0
	}
	return u.Set.Len() + u.Unset.Len()
}

// Stats holds instruction counts of an update.
type Stats struct {
	Sets   int `json:"sets"`
	Unsets int `json:"unsets"`
}

// Total returns the number of instructions.
func (s Stats) Total() int {
	return s.Sets + s.Unsets
}

// Stats counts the instructions of u.
func (u *Update) Stats() Stats {
	if u == nil {
		return Stats{}
	}
	return Stats{Sets: u.Set.Len(), Unsets: u.Unset.Len()}
}

// MarshalJSON encodes u as {"$set": {...}, "$unset": {...}}, omitting empty
// buckets.
func (u *Update) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, part := range []struct {
		op     string
		bucket *Bucket
	}{{OpSet, u.Set}, {OpUnset, u.Unset}} {
		if part.bucket.Len() == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"` + part.op + `":`)
		data, err := part.bucket.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errMalformedUpdate = errors.New("malformed update")

// UnmarshalJSON decodes an update encoded by [Update.MarshalJSON], keeping
// the order in which paths appear.
func (u *Update) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	*u = Update{}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		op, _ := tok.(string)
		if op != OpSet && op != OpUnset {
			return fmt.Errorf("%w: unsupported operator %q", errMalformedUpdate, op)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			path, _ := tok.(string)
			var value any
			if err := dec.Decode(&value); err != nil {
				return fmt.Errorf("path %q: %w", path, err)
			}
			if op == OpSet {
				u.MarkSet(path, value)
			} else {
				u.MarkUnset(path)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("%w: expected %q, got %v", errMalformedUpdate, want, tok)
	}
	return nil
}
