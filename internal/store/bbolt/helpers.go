package bbolt

import (
	"encoding/binary"

	"go.etcd.io/bbolt"

	"github.com/loog-project/docdiff/internal/store"
)

func keyObjectPrefix(objectID string) []byte {
	buf := make([]byte, len(objectID)+1, len(objectID)+1+8)
	copy(buf, objectID)
	buf[len(objectID)] = '|'
	return buf
}

func keyObjectRevision(objectID string, id store.RevisionID) []byte {
	return binary.BigEndian.AppendUint64(keyObjectPrefix(objectID), uint64(id))
}

func keyObjectChunk(objectID string, chunk uint64) []byte {
	return binary.BigEndian.AppendUint64(keyObjectPrefix(objectID), chunk)
}

// claimNextRevision atomically increments the revision counter of objectID in
// bucketLatest. It returns the newly assigned revision number and the new
// counter value, which the caller publishes once the transaction committed.
func claimNextRevision(tx *bbolt.Tx, objectID string) (store.RevisionID, uint64, error) {
	latest := tx.Bucket(bucketLatest)

	var next uint64
	if raw := latest.Get([]byte(objectID)); raw != nil {
		next = binary.BigEndian.Uint64(raw)
	}
	revisionNumber := store.RevisionID(next)
	next++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := latest.Put([]byte(objectID), buf); err != nil {
		return 0, 0, err
	}
	return revisionNumber, next, nil
}

// publishCounter updates the in-memory counter cache. Commits may finish out
// of order, so the counter only moves forward.
func (s *Store) publishCounter(objectID string, next uint64) {
	s.nextRevisionCounterMutex.Lock()
	if next > s.nextRevisionCounter[objectID] {
		s.nextRevisionCounter[objectID] = next
	}
	s.nextRevisionCounterMutex.Unlock()
}

// putChunk stores data at offset inside the chunk value, creating the chunk
// if needed.
func (s *Store) putChunk(tx *bbolt.Tx, objectID string, chunkID uint64, offset uint16, data []byte) error {
	bucket := tx.Bucket(bucketChunks)
	key := keyObjectChunk(objectID, chunkID)

	var chunk []rawPatch
	if v := bucket.Get(key); v != nil {
		if err := s.codec.Unmarshal(v, &chunk); err != nil {
			return err
		}
	}
	if len(chunk) < chunkSize {
		chunk = append(chunk, make([]rawPatch, chunkSize-len(chunk))...)
	}
	chunk[offset] = rawPatch{Data: data}

	encoded, err := s.codec.Marshal(chunk)
	if err != nil {
		return err
	}
	return bucket.Put(key, encoded)
}
