package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"declattr/internal/diag"
	"declattr/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := unitKey([32]byte{1}, "fp")
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("empty cache: err = %v", err)
	}

	in := &cachedUnit{
		Schema: diskCacheSchemaVersion,
		Target: "x86_64-unknown-linux-gnu",
		Diagnostics: []diag.Diagnostic{
			diag.New(diag.SevError, diag.MrgConflict, source.Span{File: 7, Start: 3, End: 9}, "aligned").
				WithNote(source.Span{File: 7, Start: 1, End: 2}, diag.NotePrevious),
		},
		Decls: []DeclSnapshot{{ID: 1, Name: "v", Category: "variable", Attrs: []AttrSnapshot{{Kind: "aligned", Value: "16"}}}},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}
	out, err := cache.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if out.Target != in.Target || len(out.Diagnostics) != 1 || out.Decls[0].Attrs[0].Value != "16" {
		t.Fatalf("round trip = %+v", out)
	}

	var res UnitResult
	res.restore(out, 2, 0)
	d := res.Bag.Items()[0]
	if d.Primary.File != 2 || d.Notes[0].Span.File != 2 || d.Primary.Start != 3 {
		t.Fatalf("restored spans = %+v", d)
	}
	if !res.Cached {
		t.Fatalf("restored result must be marked cached")
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := unitKey([32]byte{2}, "")
	if err := cache.Put(key, &cachedUnit{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("foreign schema: err = %v", err)
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := unitKey([32]byte{3}, "")
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(key); err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("corrupt entry: err = %v", err)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	cache, err := OpenDiskCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := unitKey([32]byte{4}, "")
	if err := cache.Put(key, &cachedUnit{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatal(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("after DropAll: err = %v", err)
	}
	if err := cache.Put(key, &cachedUnit{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatalf("cache unusable after DropAll: %v", err)
	}
}

func TestUnitKey(t *testing.T) {
	a := unitKey([32]byte{1}, "x")
	if a != unitKey([32]byte{1}, "x") {
		t.Fatalf("key is not deterministic")
	}
	if a == unitKey([32]byte{1}, "y") || a == unitKey([32]byte{2}, "x") {
		t.Fatalf("key ignores an input")
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(Digest{}, &cachedUnit{}); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(Digest{}); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("nil cache: err = %v", err)
	}
}
