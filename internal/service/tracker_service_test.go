package service_test

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/loog-project/docdiff/internal/service"
	"github.com/loog-project/docdiff/internal/store"
	bboltStore "github.com/loog-project/docdiff/internal/store/bbolt"
	"github.com/loog-project/docdiff/pkg/diffmap"
)

func newService(t *testing.T, snapshotEvery uint64, useCache bool) *service.TrackerService {
	t.Helper()
	rps, err := bboltStore.New(filepath.Join(t.TempDir(), "docdiff.db"), bboltStore.WithNoSync(true))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	svc := service.NewTrackerService(rps, snapshotEvery, useCache)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// revisions is a small history with added, changed and removed fields.
var revisions = []diffmap.Document{
	{"name": "web", "replicas": 1, "labels": diffmap.Document{"app": "web"}},
	{"name": "web", "replicas": 2, "labels": diffmap.Document{"app": "web"}},
	{"name": "web", "replicas": 2, "labels": diffmap.Document{"app": "web", "tier": "frontend"}},
	{"name": "web", "replicas": 3, "labels": diffmap.Document{"tier": "frontend"}, "ports": []any{80, 443}},
	{"name": "web", "ports": []any{443}},
}

func TestCommitAndRestore(t *testing.T) {
	for _, snapshotEvery := range []uint64{1, 2, 3, 10} {
		for _, useCache := range []bool{false, true} {
			t.Run(fmt.Sprintf("every=%d/cache=%v", snapshotEvery, useCache), func(t *testing.T) {
				ctx := context.Background()
				svc := newService(t, snapshotEvery, useCache)

				for i, doc := range revisions {
					rev, err := svc.Commit(ctx, "obj", doc)
					if err != nil {
						t.Fatalf("commit %d: %v", i, err)
					}
					if rev != store.RevisionID(i) {
						t.Fatalf("commit %d: got revision %s", i, rev)
					}
				}

				for i, want := range revisions {
					got, err := svc.Restore(ctx, "obj", store.RevisionID(i))
					if err != nil {
						t.Fatalf("restore %d: %v", i, err)
					}
					if !diffmap.Equal(want, got.Object) {
						t.Errorf("restore %d:\nwant %s\ngot  %s", i, spew.Sdump(want), spew.Sdump(got.Object))
					}
				}
			})
		}
	}
}

func TestCommitWithoutChanges(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 10, true)

	if _, err := svc.Commit(ctx, "obj", revisions[0]); err != nil {
		t.Fatal(err)
	}
	// same content with other number types and a nil field
	same := diffmap.Document{"name": "web", "replicas": 1.0, "labels": map[string]any{"app": "web"}, "gone": nil}
	rev, err := svc.Commit(ctx, "obj", same)
	if !errors.Is(err, service.ErrNoChanges) {
		t.Fatalf("want ErrNoChanges, got %v", err)
	}
	if rev != 0 {
		t.Fatalf("want latest revision 0, got %s", rev)
	}
	if latest, _ := svc.LatestRevision(ctx, "obj"); latest != 0 {
		t.Fatalf("nothing should have been stored, latest is %s", latest)
	}
}

func TestCommitDoesNotAliasInput(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 10, true)

	doc := diffmap.Document{"nested": diffmap.Document{"a": 1}}
	_, _ = svc.Commit(ctx, "obj", doc)
	doc["nested"].(diffmap.Document)["a"] = 2

	rev, err := svc.Commit(ctx, "obj", doc)
	if err != nil {
		t.Fatalf("a mutated input must be a new revision: %v", err)
	}
	if rev != 1 {
		t.Fatalf("want revision 1, got %s", rev)
	}
}

func TestChanges(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 3, false)
	for _, doc := range revisions {
		if _, err := svc.Commit(ctx, "obj", doc); err != nil {
			t.Fatal(err)
		}
	}

	u, err := svc.Changes(ctx, "obj", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	data, err := u.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"$set":{"labels.tier":"frontend","ports":[80,443],"replicas":3},"$unset":{"labels.app":1}}`
	if string(data) != want {
		t.Errorf("want %s\ngot  %s", want, data)
	}

	if _, err := svc.Changes(ctx, "obj", 0, 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 2, false)
	for _, doc := range revisions[:3] {
		if _, err := svc.Commit(ctx, "obj", doc); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.History(ctx, "obj")
	if err != nil {
		t.Fatal(err)
	}
	type entry struct {
		ID       store.RevisionID
		Snapshot bool
		Stats    diffmap.Stats
	}
	var got []entry
	for _, h := range history {
		if h.Time.IsZero() {
			t.Errorf("revision %s has no time", h.ID)
		}
		got = append(got, entry{h.ID, h.Snapshot, h.Stats})
	}
	want := []entry{
		{0, true, diffmap.Stats{}},
		{1, false, diffmap.Stats{Sets: 1}},
		{2, true, diffmap.Stats{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.History(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func BenchmarkCommit_SnapshotEvery1(b *testing.B) {
	benchCommit(b, 1)
}

func BenchmarkCommit_SnapshotEvery2(b *testing.B) {
	benchCommit(b, 2)
}

func BenchmarkCommit_SnapshotEvery4(b *testing.B) {
	benchCommit(b, 4)
}

func BenchmarkCommit_SnapshotEvery8(b *testing.B) {
	benchCommit(b, 8)
}

func BenchmarkCommit_SnapshotEvery16(b *testing.B) {
	benchCommit(b, 16)
}

func BenchmarkCommit_SnapshotEvery32(b *testing.B) {
	benchCommit(b, 32)
}

// benchCommit is the shared benchmark body.
func benchCommit(b *testing.B, snapshotEvery uint64) {
	tempDir := b.TempDir()
	dbPath := fmt.Sprintf("%s/bench-%d.db", tempDir, snapshotEvery)

	rps, err := bboltStore.New(dbPath)
	if err != nil {
		b.Fatalf("init store: %v", err)
	}
	svc := service.NewTrackerService(rps, snapshotEvery, true)
	defer func() {
		_ = svc.Close()
	}()

	// make this object large
	m := map[string]any{}
	for i := 0; i < 500; i++ {
		m[rand.Text()] = rand.Text()
	}

	// base document with metadata.name mutated each loop.
	base := diffmap.Document{
		"kind": "ConfigMap",
		"metadata": map[string]any{
			"namespace":  "default",
			"name":       "cm-0",
			"generation": int64(1),
		},
		"data": m,
	}

	objectID := "bench-uid"

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// mutate name + generation each commit
		meta := base["metadata"].(map[string]any)
		meta["name"] = "cm-" + strconv.Itoa(i)
		meta["generation"] = int64(i + 1)

		if _, err := svc.Commit(b.Context(), objectID, base); err != nil {
			b.Fatalf("commit error: %v", err)
		}
	}
	b.StopTimer()

	// record file size for visibility
	if fi, err := os.Stat(dbPath); err == nil {
		b.ReportMetric(float64(fi.Size())/1e3, "KB_db")
	} else {
		b.Fatalf("stat db file: %v", err)
	}
}
