package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"declattr/internal/diag"
	"declattr/internal/source"
)

// Current schema version - increment when cachedUnit changes shape.
const diskCacheSchemaVersion uint16 = 1

// ErrCacheMiss is returned by DiskCache.Get when no usable entry exists.
var ErrCacheMiss = errors.New("cache miss")

// DiskCache stores unit results on disk keyed by content and settings.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachedUnit is the on-disk form of a UnitResult. Spans keep offsets only;
// the file ID is reassigned on load.
type cachedUnit struct {
	Schema      uint16
	Target      string
	Diagnostics []diag.Diagnostic
	Decls       []DeclSnapshot
}

// OpenDiskCache opens (creating if needed) a cache rooted at dir. An empty
// dir selects $XDG_CACHE_HOME/declattr or ~/.cache/declattr.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "declattr")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "units", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *cachedUnit) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// After a successful rename the temp name no longer exists.
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry for key. It returns ErrCacheMiss when none exists or
// the entry was written by another schema version.
func (c *DiskCache) Get(key Digest) (*cachedUnit, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer f.Close()

	var out cachedUnit
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", f.Name(), err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return nil, ErrCacheMiss
	}
	return &out, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func (res *UnitResult) payload() *cachedUnit {
	return &cachedUnit{
		Schema:      diskCacheSchemaVersion,
		Target:      res.Target,
		Diagnostics: res.Bag.Items(),
		Decls:       res.Decls,
	}
}

// restore fills res from a cache entry, moving spans onto file.
func (res *UnitResult) restore(p *cachedUnit, file source.FileID, maxDiagnostics int) {
	res.Cached = true
	res.Target = p.Target
	res.Decls = p.Decls
	res.Bag = diag.NewBag(maxDiagnostics)
	for _, d := range p.Diagnostics {
		d.Primary.File = file
		for i := range d.Notes {
			d.Notes[i].Span.File = file
		}
		res.Bag.Add(d)
	}
}
