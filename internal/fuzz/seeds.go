package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16  // 64 KiB
)

// addUnitSeeds adds every unit under testdata plus a few fixed shapes.
func addUnitSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err == nil {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() {
				return nil
			}
			if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
				return nil
			}
			// #nosec G304 -- path comes from repository testdata walk
			src, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f.Add(clampSeed(src))
			return nil
		})
	}
	f.Add([]byte{})
	f.Add([]byte("decls:\n  - name: v\n    attrs: [aligned]\n"))
	f.Add([]byte("decls:\n  - name: f\n    kind: function\n    template: [N]\n    attrs:\n      - name: alloc_size\n        args: [N]\ninstantiate:\n  - decl: f\n    values: {N: 0}\n"))
	f.Add([]byte("decls: [{name: x, attrs: [{name: section, args: ['\".text\"']}]}]\n"))
}

func addArgSeeds(f *testing.F) {
	for _, s := range []string{
		"16", "0x10", "-1", "1 << 4", "sizeof(int)", "(N + 1) * 2", "\"hot\"",
		"N", "~0u", "1 +", ")", "sizeof(", "'a'", "2147483648", "9223372036854775808",
	} {
		f.Add(s)
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return append([]byte(nil), src[:maxSeedBytes]...)
	}
	return append([]byte(nil), src...)
}
