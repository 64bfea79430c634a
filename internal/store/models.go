package store

import (
	"fmt"
	"time"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%08x", uint64(id))
}

// Assignment is a single $set instruction.
type Assignment struct {
	Path  string `msgpack:"p" json:"path"`
	Value any    `msgpack:"v" json:"value"`
}

type Patch struct {
	/// Revision Metadata
	// ID of the revision
	ID RevisionID `msgpack:"i" json:"ID,omitempty"`
	// PreviousID is the ID of the previous revision.
	// This should always be set since a patch cannot exist without a previous snapshot.
	PreviousID RevisionID `msgpack:"<,omitempty" json:"previousID,omitempty"`
	// Time the revision was committed.
	Time time.Time `msgpack:"t" json:"time"`

	/// Patch Metadata
	// Set and Unset hold the update from the previous revision to this one,
	// in the order it was computed. see [diffmap.Diff] for more details.
	Set   []Assignment `msgpack:"s,omitempty" json:"set,omitempty"`
	Unset []string     `msgpack:"u,omitempty" json:"unset,omitempty"`
}

// PatchFromUpdate flattens u into the stored representation.
func PatchFromUpdate(u *diffmap.Update) *Patch {
	p := &Patch{}
	if u == nil {
		return p
	}
	u.Set.Range(func(path string, value any) bool {
		p.Set = append(p.Set, Assignment{Path: path, Value: value})
		return true
	})
	u.Unset.Range(func(path string, _ any) bool {
		p.Unset = append(p.Unset, path)
		return true
	})
	return p
}

// Update rebuilds the update stored in p.
func (p *Patch) Update() *diffmap.Update {
	u := &diffmap.Update{}
	for _, path := range p.Unset {
		u.MarkUnset(path)
	}
	for _, a := range p.Set {
		u.MarkSet(a.Path, a.Value)
	}
	return u
}

type Snapshot struct {
	/// Revision Metadata
	// ID of the revision
	ID RevisionID `msgpack:"i" json:"ID,omitempty"`
	// PreviousID is the ID of the previous revision. This can be empty if this is the first revision.
	PreviousID RevisionID `msgpack:"<,omitempty" json:"previousID,omitempty"`
	// Time the revision was committed.
	Time time.Time `msgpack:"t" json:"time"`

	/// Snapshot Metadata
	// Object is the full document at this revision.
	Object diffmap.Document `msgpack:"o" json:"object,omitempty"`
}
