package diffmap_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

func TestUpdateLazyBuckets(t *testing.T) {
	u := &diffmap.Update{}
	if u.Set != nil || u.Unset != nil || !u.IsEmpty() {
		t.Fatal("new update must not have buckets")
	}

	u.MarkUnset("a")
	if u.Set != nil || u.Unset.Len() != 1 {
		t.Fatalf("only the unset bucket should exist, got %+v", u)
	}
}

func TestUpdatePathInOneBucketOnly(t *testing.T) {
	u := &diffmap.Update{}
	u.MarkSet("a", 1)
	u.MarkUnset("a")
	if u.Set != nil {
		t.Fatalf("set bucket should be dropped once empty, got %v", u.Set.Paths())
	}
	if !u.Unset.Has("a") {
		t.Fatal("a should be unset")
	}

	u.MarkSet("a", 2)
	if u.Unset != nil {
		t.Fatal("unset bucket should be dropped once empty")
	}
	if v, _ := u.Set.Get("a"); v != 2 {
		t.Fatalf("last write should win, got %v", v)
	}
}

func TestUpdateKeepsInsertionOrder(t *testing.T) {
	u := &diffmap.Update{}
	for _, p := range []string{"z", "a", "m"} {
		u.MarkSet(p, p)
	}
	u.MarkSet("a", "again")

	if diff := cmp.Diff([]string{"z", "a", "m"}, u.Set.Paths()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := u.Stats(); got != (diffmap.Stats{Sets: 3}) || got.Total() != 3 {
		t.Errorf("unexpected stats %+v", got)
	}
}

func TestUpdateJSON(t *testing.T) {
	u := diffmap.Diff(
		diffmap.Document{"b": 1, "a": diffmap.Document{"y": 1, "x": 2}, "gone": true},
		diffmap.Document{"b": 2, "a": diffmap.Document{"y": 3, "x": []any{1}}},
	)

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"$set":{"a.x":[1],"a.y":3,"b":2},"$unset":{"gone":1}}`
	if string(data) != want {
		t.Fatalf("want %s\ngot  %s", want, data)
	}

	var decoded diffmap.Update
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(u.Set.Paths(), decoded.Set.Paths()); diff != "" {
		t.Errorf("decoded order mismatch (-want +got):\n%s", diff)
	}
	if !decoded.Unset.Has("gone") {
		t.Error("decoded update lost $unset")
	}
}

func TestUpdateJSONEmpty(t *testing.T) {
	data, err := json.Marshal(&diffmap.Update{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{}` {
		t.Fatalf("want {}, got %s", data)
	}
}

func TestUpdateUnmarshalRejectsUnknownOperator(t *testing.T) {
	var u diffmap.Update
	err := json.Unmarshal([]byte(`{"$inc":{"a":1}}`), &u)
	if err == nil {
		t.Fatal("expected error")
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		t.Fatalf("expected operator error, got syntax error %v", err)
	}
}

func TestUpdateBSON(t *testing.T) {
	u := diffmap.Diff(
		diffmap.Document{"a": 1, "b": diffmap.Document{"c": "x"}},
		diffmap.Document{"a": 2, "b": diffmap.Document{}},
	)

	data, err := bson.Marshal(u.BSON())
	if err != nil {
		t.Fatal(err)
	}
	raw := bson.Raw(data)

	if v, ok := raw.Lookup(diffmap.OpSet, "a").Int32OK(); !ok || v != 2 {
		t.Fatalf("unexpected $set.a in %s", raw)
	}
	if v, ok := raw.Lookup(diffmap.OpUnset, "b.c").Int32OK(); !ok || v != diffmap.Marker {
		t.Fatalf("unexpected $unset in %s", raw)
	}
	if keys, _ := raw.Elements(); len(keys) != 2 || keys[0].Key() != diffmap.OpSet {
		t.Fatalf("expected $set before $unset in %s", raw)
	}
}

func TestUpdateBSONEmpty(t *testing.T) {
	if d := diffmap.Diff(nil, nil).BSON(); len(d) != 0 {
		t.Fatalf("want empty update document, got %v", d)
	}
}
