package runtime

import (
	"context"
	"testing"
)

func TestLocalDatasetMapAndCollect(t *testing.T) {
	ds := NewLocalDataset(context.Background(), map[int]int{1: 10, 2: 20})

	mapped := ds.Map(func(k, v int) (int, int) { return k, v * 2 })
	if mapped.Count() != 2 {
		t.Fatalf("expected 2 entries; got %d", mapped.Count())
	}

	total := 0
	for _, v := range mapped.Collect() {
		total += v
	}
	if total != 60 {
		t.Fatalf("expected doubled values to sum to 60; got %d", total)
	}
}

func TestLocalDatasetIsolatedFromSourceMap(t *testing.T) {
	src := map[int]int{1: 1}
	ds := NewLocalDataset(context.Background(), src)
	src[1] = 999

	if v := ds.Entries()[1]; v != 1 {
		t.Fatalf("expected dataset to be isolated from later mutation of the source map; got %d", v)
	}
}

func TestLocalDatasetFirstOnEmpty(t *testing.T) {
	ds := NewLocalDataset[int, int](context.Background(), nil)
	if _, _, ok := ds.First(); ok {
		t.Fatalf("expected First to report ok=false on an empty dataset")
	}
}

func TestLocalBroadcastValue(t *testing.T) {
	b := NewLocalBroadcast(42)
	if b.Value() != 42 {
		t.Fatalf("expected broadcast value 42; got %d", b.Value())
	}
}
