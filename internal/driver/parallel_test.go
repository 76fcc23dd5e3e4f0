package driver

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"declattr/internal/diag"
)

func writeUnits(t *testing.T, dir string, units map[string]string) {
	t.Helper()
	for name, body := range units {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListUnits(t *testing.T) {
	dir := t.TempDir()
	writeUnits(t, dir, map[string]string{
		"b.yaml":          "",
		"a/c.yml":         "",
		"notes.txt":       "",
		".hidden/d.yaml":  "",
		"a/deeper/e.yaml": "",
	})
	explicit := filepath.Join(dir, "notes.txt")
	got, err := ListUnits([]string{dir, explicit, filepath.Join(dir, "b.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a", "c.yml"),
		filepath.Join(dir, "a", "deeper", "e.yaml"),
		filepath.Join(dir, "b.yaml"),
		explicit,
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("ListUnits = %v, want %v", got, want)
	}
	if _, err := ListUnits([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("missing path accepted")
	}
}

func TestCheckPaths(t *testing.T) {
	dir := t.TempDir()
	writeUnits(t, dir, map[string]string{
		"fpga.yaml":    fpgaUnit,
		"subgrp.yaml":  subGroupUnit,
		"warning.yaml": "decls:\n  - name: v\n    attrs: [frobnicate]\n",
	})
	files := []string{
		filepath.Join(dir, "fpga.yaml"),
		filepath.Join(dir, "missing.yaml"),
		filepath.Join(dir, "subgrp.yaml"),
		filepath.Join(dir, "warning.yaml"),
	}

	var mu sync.Mutex
	var events []UnitEvent
	opts := hostOptions(t)
	opts.Jobs = 2
	opts.Observer = func(ev UnitEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	fs, results, err := CheckPaths(context.Background(), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(files) {
		t.Fatalf("results = %d", len(results))
	}
	for i, res := range results {
		if filepath.Base(res.Path) != filepath.Base(files[i]) {
			t.Errorf("result %d is for %s", i, res.Path)
		}
	}
	if fs.Len() != len(files)-1 {
		t.Fatalf("file set holds %d files", fs.Len())
	}
	wantCodes(t, results[0].Bag)
	wantCodes(t, results[1].Bag, diag.DrvLoad)
	wantCodes(t, results[2].Bag, diag.ArgRange)
	wantCodes(t, results[3].Bag, diag.TgtUnknownAttr)

	if len(events) != 2*len(files) {
		t.Fatalf("events = %d, want %d", len(events), 2*len(files))
	}
	ends := 0
	for _, ev := range events {
		if ev.Status == UnitEnd {
			ends++
			if ev.Index == 1 && ev.Errors != 1 {
				t.Errorf("missing file must count one error: %+v", ev)
			}
		}
	}
	if ends != len(files) {
		t.Fatalf("end events = %d", ends)
	}

	sum := Summarize(results)
	if sum.Units != 4 || sum.Errors != 2 || sum.Warnings != 1 || !sum.Failed() {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestCheckPathsCancelled(t *testing.T) {
	dir := t.TempDir()
	writeUnits(t, dir, map[string]string{"a.yaml": fpgaUnit})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := CheckPaths(ctx, []string{filepath.Join(dir, "a.yaml")}, hostOptions(t))
	if err == nil {
		t.Fatalf("cancelled run reported success")
	}
}

func TestCheckPathsUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeUnits(t, dir, map[string]string{"sub.yaml": subGroupUnit})
	files := []string{filepath.Join(dir, "sub.yaml")}

	cache, err := OpenDiskCache(filepath.Join(dir, ".cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := hostOptions(t)
	opts.Cache = cache
	opts.Fingerprint = "f1"

	_, first, err := CheckPaths(context.Background(), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached {
		t.Fatalf("first run cannot be cached")
	}
	_, second, err := CheckPaths(context.Background(), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached {
		t.Fatalf("second run must hit the cache")
	}
	a, b := first[0].Bag.Items(), second[0].Bag.Items()
	if len(a) != len(b) || a[0].Code != b[0].Code || a[0].Primary != b[0].Primary || !slices.Equal(a[0].Args, b[0].Args) {
		t.Fatalf("cached diagnostics differ: %+v vs %+v", a, b)
	}
	if len(second[0].Decls) != len(first[0].Decls) {
		t.Fatalf("cached snapshot differs")
	}

	opts.Fingerprint = "f2"
	_, third, err := CheckPaths(context.Background(), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Fatalf("changed settings must miss the cache")
	}
}
