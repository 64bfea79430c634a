// Package jsonpatch converts diffmap updates into RFC 6902 JSON Patch
// documents and applies them.
package jsonpatch

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer converts a dot-notation path into a JSON pointer.
func Pointer(path string) string {
	if path == "" {
		return ""
	}
	segments := strings.Split(path, ".")
	for i, s := range segments {
		segments[i] = pointerEscaper.Replace(s)
	}
	return "/" + strings.Join(segments, "/")
}

// FromUpdate translates u into a patch. Every $unset becomes a "remove" and
// every $set an "add" (which replaces existing members). Removals come first
// so that a path set below a removed one survives.
func FromUpdate(u *diffmap.Update) jsondiff.Patch {
	if u.IsEmpty() {
		return nil
	}
	patch := make(jsondiff.Patch, 0, u.Len())
	u.Unset.Range(func(path string, _ any) bool {
		patch = append(patch, jsondiff.Operation{
			Type: jsondiff.OperationRemove,
			Path: Pointer(path),
		})
		return true
	})
	u.Set.Range(func(path string, value any) bool {
		patch = append(patch, jsondiff.Operation{
			Type:  jsondiff.OperationAdd,
			Path:  Pointer(path),
			Value: value,
		})
		return true
	})
	return patch
}

// Compare returns the structural patch computed by jsondiff itself. Unlike
// [FromUpdate] it produces "replace" operations and array element paths.
func Compare(oldDoc, newDoc diffmap.Document) (jsondiff.Patch, error) {
	return jsondiff.Compare(oldDoc, newDoc)
}

// Apply returns a copy of doc with u applied through JSON Patch. Values go
// through a JSON round trip, so numbers come back as float64 and dates as
// strings. Missing parents are created and removing a missing member is not
// an error.
// TODO: avoid the marshal/unmarshal round trip for large documents
func Apply(doc diffmap.Document, u *diffmap.Update) (diffmap.Document, error) {
	if doc == nil {
		doc = diffmap.Document{}
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cannot encode document: %w", err)
	}
	if u.IsEmpty() {
		return decode(docBytes)
	}

	patchBytes, err := json.Marshal(FromUpdate(u))
	if err != nil {
		return nil, fmt.Errorf("cannot encode patch: %w", err)
	}
	p, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot decode patch: %w", err)
	}

	opts := jsonpatch.NewApplyOptions()
	opts.EnsurePathExistsOnAdd = true
	opts.AllowMissingPathOnRemove = true
	out, err := p.ApplyWithOptions(docBytes, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot apply patch: %w", err)
	}
	return decode(out)
}

func decode(data []byte) (diffmap.Document, error) {
	var out diffmap.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cannot decode document: %w", err)
	}
	return out, nil
}
