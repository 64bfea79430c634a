package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loog-project/docdiff/internal/store"
	"github.com/loog-project/docdiff/pkg/diffmap"
)

// ErrNoChanges is returned by Commit when the document equals the latest
// revision. Nothing is stored in that case.
var ErrNoChanges = errors.New("no changes")

// TrackerService stores the history of documents. Each revision is either
// a full snapshot or the $set/$unset update from the previous revision, and
// any revision can be restored by replaying updates onto the nearest
// snapshot.
type TrackerService struct {
	rps           store.RevisionStore
	snapshotEvery uint64 // create full snapshot after this many patches
	cache         *stateCache
	now           func() time.Time
}

// NewTrackerService creates a new TrackerService instance. With [useCache]
// the latest state of each object is kept in memory, so commits do not need
// to replay the chain.
func NewTrackerService(rps store.RevisionStore, snapshotEvery uint64, useCache bool) *TrackerService {
	if snapshotEvery == 0 {
		snapshotEvery = 10
	}
	t := &TrackerService{
		rps:           rps,
		snapshotEvery: snapshotEvery,
		now:           time.Now,
	}
	if useCache {
		t.cache = newStateCache(defaultCacheLimits)
	}
	return t
}

// Commit persists doc and returns the new revision ID. If doc does not
// differ from the latest revision, the latest revision ID is returned along
// with ErrNoChanges.
func (t *TrackerService) Commit(
	ctx context.Context,
	objID string,
	doc diffmap.Document,
) (store.RevisionID, error) {
	doc = diffmap.CloneDocument(doc)
	latest, err := t.rps.GetLatestRevision(ctx, objID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}

		snapshot := store.Snapshot{Time: t.now(), Object: doc}
		if err := t.rps.SetSnapshot(ctx, objID, &snapshot); err != nil {
			return 0, err
		}
		log.Debug().Str("object", objID).Stringer("rev", snapshot.ID).Msg("stored initial snapshot")
		t.remember(objID, snapshot.ID, doc)
		return snapshot.ID, nil
	}

	// reconstruct latest state to diff
	base, err := t.latestState(ctx, objID, latest)
	if err != nil {
		return 0, err
	}
	update := diffmap.Diff(base, doc)
	if update.IsEmpty() {
		return latest, fmt.Errorf("%w since revision %s", ErrNoChanges, latest)
	}

	chain, err := t.patchDistance(ctx, objID, latest)
	if err != nil {
		return 0, err
	}

	// check if it's time for a full snapshot
	if uint64(chain) >= t.snapshotEvery-1 {
		snapshot := store.Snapshot{
			PreviousID: latest,
			Time:       t.now(),
			Object:     doc,
		}
		if err := t.rps.SetSnapshot(ctx, objID, &snapshot); err != nil {
			return 0, err
		}
		log.Debug().Str("object", objID).Stringer("rev", snapshot.ID).Int("chain", chain).Msg("stored snapshot")
		t.remember(objID, snapshot.ID, doc)
		return snapshot.ID, nil
	}

	p := store.PatchFromUpdate(update)
	p.PreviousID = latest
	p.Time = t.now()
	if err := t.rps.SetPatch(ctx, objID, p); err != nil {
		return 0, err
	}
	log.Debug().
		Str("object", objID).
		Stringer("rev", p.ID).
		Int("sets", len(p.Set)).
		Int("unsets", len(p.Unset)).
		Msg("stored patch")
	t.remember(objID, p.ID, doc)
	return p.ID, nil
}

// Restore brings back the object state at rev.
func (t *TrackerService) Restore(ctx context.Context, objID string, rev store.RevisionID) (*store.Snapshot, error) {
	var chain []*store.Patch
	cur := rev
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, p, err := t.rps.Get(ctx, objID, cur)
		if err != nil {
			if len(chain) == 0 {
				return nil, err
			}
			return nil, fmt.Errorf("broken chain at %s: %w", cur, err)
		}
		if p != nil {
			if p.PreviousID >= cur {
				return nil, fmt.Errorf("%w: %s points forward to %s", store.ErrInvalidRevision, cur, p.PreviousID)
			}
			chain = append(chain, p)
			cur = p.PreviousID
			continue
		}

		// we have now found the base snapshot
		state := diffmap.CloneDocument(snap.Object)
		if state == nil {
			state = diffmap.Document{}
		}
		at := snap.Time
		for i := len(chain) - 1; i >= 0; i-- {
			diffmap.Apply(state, chain[i].Update())
			at = chain[i].Time
		}
		log.Debug().
			Str("object", objID).
			Stringer("rev", rev).
			Stringer("base", snap.ID).
			Int("patches", len(chain)).
			Msg("restored revision")
		return &store.Snapshot{
			ID:         rev,
			PreviousID: snap.PreviousID,
			Time:       at,
			Object:     state,
		}, nil
	}
}

// Changes returns the update that transforms revision from into revision to.
func (t *TrackerService) Changes(ctx context.Context, objID string, from, to store.RevisionID) (*diffmap.Update, error) {
	a, err := t.Restore(ctx, objID, from)
	if err != nil {
		return nil, fmt.Errorf("cannot restore %s: %w", from, err)
	}
	b, err := t.Restore(ctx, objID, to)
	if err != nil {
		return nil, fmt.Errorf("cannot restore %s: %w", to, err)
	}
	return diffmap.Diff(a.Object, b.Object), nil
}

// RevisionInfo summarises a stored revision.
type RevisionInfo struct {
	ID       store.RevisionID
	Snapshot bool
	Time     time.Time
	Stats    diffmap.Stats
}

// History lists all revisions of objID in ascending order.
func (t *TrackerService) History(ctx context.Context, objID string) ([]RevisionInfo, error) {
	var out []RevisionInfo
	err := t.rps.WalkObjectRevisions(ctx, objID, func(rev store.RevisionID, snap *store.Snapshot, p *store.Patch) error {
		if snap != nil {
			out = append(out, RevisionInfo{ID: rev, Snapshot: true, Time: snap.Time})
			return nil
		}
		out = append(out, RevisionInfo{
			ID:    rev,
			Time:  p.Time,
			Stats: diffmap.Stats{Sets: len(p.Set), Unsets: len(p.Unset)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: object %q", store.ErrNotFound, objID)
	}
	return out, nil
}

// LatestRevision returns the most recent revision of objID.
func (t *TrackerService) LatestRevision(ctx context.Context, objID string) (store.RevisionID, error) {
	return t.rps.GetLatestRevision(ctx, objID)
}

// Objects lists the IDs of all tracked objects.
func (t *TrackerService) Objects(ctx context.Context) ([]string, error) {
	return t.rps.Objects(ctx)
}

// Close stops the cache janitor and closes the underlying store.
func (t *TrackerService) Close() error {
	if t.cache != nil {
		t.cache.close()
	}
	return t.rps.Close()
}

func (t *TrackerService) latestState(ctx context.Context, objID string, latest store.RevisionID) (diffmap.Document, error) {
	if t.cache != nil {
		if doc, ok := t.cache.lookup(objID, latest); ok {
			return doc, nil
		}
	}
	snap, err := t.Restore(ctx, objID, latest)
	if err != nil {
		return nil, err
	}
	return snap.Object, nil
}

func (t *TrackerService) remember(objID string, rev store.RevisionID, doc diffmap.Document) {
	if t.cache == nil {
		return
	}
	t.cache.put(objID, rev, doc)
}

func (t *TrackerService) patchDistance(ctx context.Context, obj string, from store.RevisionID) (int, error) {
	n := 0
	cur := from
	for {
		snap, p, err := t.rps.Get(ctx, obj, cur)
		if err != nil {
			return 0, err
		}
		if snap != nil {
			return n, nil
		}
		if p.PreviousID >= cur {
			return 0, fmt.Errorf("%w: %s points forward to %s", store.ErrInvalidRevision, cur, p.PreviousID)
		}
		n++
		cur = p.PreviousID
	}
}
