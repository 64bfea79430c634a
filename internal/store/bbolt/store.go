package bbolt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/loog-project/docdiff/internal/store"
)

var (
	bucketSnapshots = []byte("snapshots")   // <obj>|rev  -> Snapshot
	bucketChunks    = []byte("patchChunks") // <obj>|chunkID -> []rawPatch
	bucketIndex     = []byte("index")       // <obj>|rev  -> indexEntry
	bucketLatest    = []byte("latest")      // <obj>      -> uint64(nextRev)
	bucketMeta      = []byte("meta")

	keyLayoutVersion = []byte("layout")
)

// ErrIncompatibleLayout is returned by [New] for a database written by an
// incompatible version.
var ErrIncompatibleLayout = errors.New("incompatible database layout")

var (
	errRevisionIsSnapshot = errors.New("revision is a snapshot")
	errPatchChunkMissing  = errors.New("patch chunk missing")
)

const (
	chunkSize          = 64 // patches per chunk value
	layoutVersion      = 1
	defaultLockTimeout = 5 * time.Second
)

type indexEntry struct {
	Snap   bool   `msgpack:"s"`
	Chunk  uint64 `msgpack:"c"`
	Offset uint16 `msgpack:"o"`
}

type rawPatch struct {
	Data []byte `msgpack:"d"`
}

type Store struct {
	db    *bbolt.DB
	codec store.Codec

	nextRevisionCounterMutex sync.RWMutex
	nextRevisionCounter      map[string]uint64
}

var _ store.RevisionStore = (*Store)(nil)

type options struct {
	codec   store.Codec
	noSync  bool
	timeout time.Duration
}

// Option configures [New].
type Option func(*options)

// WithCodec sets the codec for snapshots and patches. The default is
// [store.DefaultCodec].
func WithCodec(codec store.Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithNoSync skips fsync after each commit, trading durability for write
// throughput.
func WithNoSync(noSync bool) Option {
	return func(o *options) { o.noSync = noSync }
}

// WithLockTimeout bounds how long New waits for another process to release
// the database file. Zero waits forever.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New opens (or creates) a BoltDB database file.
func New(path string, opts ...Option) (*Store, error) {
	o := options{codec: store.DefaultCodec, timeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := bbolt.Open(path, 0o666, &bbolt.Options{
		Timeout:      o.timeout,
		FreelistType: bbolt.FreelistMapType,
		NoSync:       o.noSync,
	})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("%s is locked by another process: %w", path, err)
	}
	if err != nil {
		return nil, err
	}
	if err = db.Update(initBuckets); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot initialize %s: %w", path, err)
	}
	return &Store{
		db:                  db,
		codec:               o.codec,
		nextRevisionCounter: make(map[string]uint64),
	}, nil
}

// initBuckets creates the buckets of a new database and checks the layout
// version of an existing one.
func initBuckets(tx *bbolt.Tx) error {
	for _, b := range [][]byte{bucketSnapshots, bucketChunks, bucketIndex, bucketLatest} {
		if _, err := tx.CreateBucketIfNotExists(b); err != nil {
			return err
		}
	}
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}
	switch v := meta.Get(keyLayoutVersion); {
	case v == nil:
		return meta.Put(keyLayoutVersion, []byte{layoutVersion})
	case len(v) != 1 || v[0] != layoutVersion:
		return fmt.Errorf("%w: layout version %v, want %d", ErrIncompatibleLayout, v, layoutVersion)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
