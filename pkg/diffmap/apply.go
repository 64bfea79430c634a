package diffmap

import "strings"

// Apply mutates [dst] so that, after the call, it reflects every instruction
// of u. Assigned values are cloned, dst never aliases data held by u.
//
//	dst := Document{"a": 1, "b": Document{"c": false}}
//	u := ComputeUpdate(dst, Document{"a": 1, "b": Document{"c": true}})
//	diffmap.Apply(dst, u) // dst is now {"a":1,"b":{"c":true}}
//
// "$set" creates missing intermediate documents along the path and replaces
// intermediates that are not documents. "$unset" of a missing path is a
// no-op. Keys containing a dot cannot be addressed.
func Apply(dst Document, u *Update) {
	if dst == nil || u.IsEmpty() {
		return
	}
	u.Unset.Range(func(path string, _ any) bool {
		unsetPath(dst, strings.Split(path, "."))
		return true
	})
	u.Set.Range(func(path string, value any) bool {
		setPath(dst, strings.Split(path, "."), Clone(value))
		return true
	})
}

func setPath(dst Document, segments []string, value any) {
	current := dst
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(Document)
		if !ok {
			// either absent or not a plain document -> allocate once
			if doc, isDoc := asDocument(current[segment]); isDoc {
				next = doc
			} else {
				next = make(Document)
			}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

func unsetPath(dst Document, segments []string) {
	current := dst
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(Document)
		if !ok {
			doc, isDoc := asDocument(current[segment])
			if !isDoc {
				return
			}
			next = doc
			current[segment] = next
		}
		current = next
	}
	delete(current, segments[len(segments)-1])
}
