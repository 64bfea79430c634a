package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/loog-project/docdiff/internal/store"
)

// SetSnapshot stores a full snapshot and bumps the counter.
func (s *Store) SetSnapshot(
	_ context.Context,
	objectID string,
	snapshot *store.Snapshot,
) error {
	var next uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		revNum, n, err := claimNextRevision(tx, objectID)
		if err != nil {
			return err
		}
		snapshot.ID, next = revNum, n

		// save the payload
		key := keyObjectRevision(objectID, revNum)
		payload, err := s.codec.Marshal(snapshot)
		if err != nil {
			return err
		}
		err = tx.Bucket(bucketSnapshots).Put(key, payload)
		if err != nil {
			return err
		}

		// update the index
		indexBytes, err := msgpack.Marshal(indexEntry{Snap: true})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put(key, indexBytes)
	})
	if err != nil {
		return err
	}
	s.publishCounter(objectID, next)
	return nil
}

// SetPatch stores a delta and bumps the counter.
func (s *Store) SetPatch(
	_ context.Context,
	objectID string,
	rec *store.Patch,
) error {
	var next uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		revNum, n, err := claimNextRevision(tx, objectID)
		if err != nil {
			return err
		}
		if revNum == 0 {
			return fmt.Errorf("%w: object %q has no base snapshot", store.ErrInvalidRevision, objectID)
		}
		rec.ID, next = revNum, n

		chunkID := uint64(revNum) / chunkSize
		offset := uint16(revNum % chunkSize)
		recBytes, err := s.codec.Marshal(rec)
		if err != nil {
			return err
		}
		if err := s.putChunk(tx, objectID, chunkID, offset, recBytes); err != nil {
			return err
		}
		idx := indexEntry{Snap: false, Chunk: chunkID, Offset: offset}
		idxBytes, err := msgpack.Marshal(&idx)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put(keyObjectRevision(objectID, revNum), idxBytes)
	})
	if err != nil {
		return err
	}
	s.publishCounter(objectID, next)
	return nil
}

// Get returns the record stored at revID: a snapshot or a patch.
func (s *Store) Get(_ context.Context, objectID string, revID store.RevisionID) (*store.Snapshot, *store.Patch, error) {
	var (
		snapshot *store.Snapshot
		patchRec *store.Patch
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		snapshot, patchRec, err = s.get(tx, objectID, revID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return snapshot, patchRec, nil
}

func (s *Store) get(tx *bbolt.Tx, objectID string, revID store.RevisionID) (*store.Snapshot, *store.Patch, error) {
	key := keyObjectRevision(objectID, revID)
	idxBytes := tx.Bucket(bucketIndex).Get(key)
	if idxBytes == nil {
		return nil, nil, fmt.Errorf("%w: %s@%s", store.ErrNotFound, objectID, revID)
	}
	var idx indexEntry
	if err := msgpack.Unmarshal(idxBytes, &idx); err != nil {
		return nil, nil, err
	}
	if idx.Snap {
		snapshot, err := s.getSnapshot(tx, key)
		return snapshot, nil, err
	}
	p, err := s.getPatch(tx, objectID, idx)
	return nil, p, err
}

func (s *Store) getSnapshot(tx *bbolt.Tx, key []byte) (*store.Snapshot, error) {
	v := tx.Bucket(bucketSnapshots).Get(key)
	if v == nil {
		return nil, store.ErrNotFound
	}
	var snapshot store.Snapshot
	if err := s.codec.Unmarshal(v, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Store) getPatch(tx *bbolt.Tx, objectID string, idx indexEntry) (*store.Patch, error) {
	if idx.Snap {
		return nil, errRevisionIsSnapshot
	}
	chunkBytes := tx.Bucket(bucketChunks).Get(keyObjectChunk(objectID, idx.Chunk))
	if chunkBytes == nil {
		return nil, errPatchChunkMissing
	}
	var arr []rawPatch
	if err := s.codec.Unmarshal(chunkBytes, &arr); err != nil {
		return nil, err
	}
	if int(idx.Offset) >= len(arr) || arr[idx.Offset].Data == nil {
		return nil, errPatchChunkMissing
	}
	var patchRec store.Patch
	if err := s.codec.Unmarshal(arr[idx.Offset].Data, &patchRec); err != nil {
		return nil, err
	}
	return &patchRec, nil
}

// GetLatestRevision returns the highest committed revision for objectID.
func (s *Store) GetLatestRevision(
	_ context.Context,
	objectID string,
) (store.RevisionID, error) {
	// check cache first
	s.nextRevisionCounterMutex.RLock()
	if next, ok := s.nextRevisionCounter[objectID]; ok {
		s.nextRevisionCounterMutex.RUnlock()
		return store.RevisionID(next - 1), nil
	}
	s.nextRevisionCounterMutex.RUnlock()

	var next uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(objectID))
		if v == nil {
			return store.ErrNotFound
		}
		next = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publishCounter(objectID, next)
	return store.RevisionID(next - 1), nil
}

// WalkObjectRevisions calls fn for every revision of objectID in ascending
// order inside a single read transaction.
func (s *Store) WalkObjectRevisions(ctx context.Context, objectID string, fn store.WalkFunc) error {
	prefix := keyObjectPrefix(objectID)
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketIndex).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// another object whose ID starts with "<objectID>|"
			if len(k) != len(prefix)+8 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rev := store.RevisionID(binary.BigEndian.Uint64(k[len(prefix):]))

			var idx indexEntry
			if err := msgpack.Unmarshal(v, &idx); err != nil {
				return err
			}
			var err error
			if idx.Snap {
				var snap *store.Snapshot
				if snap, err = s.getSnapshot(tx, k); err == nil {
					err = fn(rev, snap, nil)
				}
			} else {
				var p *store.Patch
				if p, err = s.getPatch(tx, objectID, idx); err == nil {
					err = fn(rev, nil, p)
				}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Objects returns the IDs of all objects with at least one revision.
func (s *Store) Objects(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLatest).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
