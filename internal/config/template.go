package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const template = `# declattr settings; see "declattr kinds" for attribute names.

[target]
triple = %q
lang = %q

[diagnostics]
max = 0                     # 0 keeps every diagnostic
warnings_as_errors = false
no_warnings = false
format = "pretty"           # pretty | short | json | sarif

[trace]
level = "off"               # off | error | phase | detail | debug
output = "-"
format = "auto"

[cache]
enabled = false
dir = ".declattr-cache"

# Per-attribute gate overrides, for example:
# [gate."intel::fpga_register"]
# arches = ["spir64_fpga"]
# policy = "error"
`

// Init writes a declattr.toml for triple and lang into dir. It refuses to
// overwrite an existing file.
func Init(dir, triple, lang string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	cfg := Default()
	if triple != "" {
		cfg.Target.Triple = triple
	}
	if lang != "" {
		cfg.Target.Lang = lang
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	body := fmt.Sprintf(template, cfg.Target.Triple, cfg.Target.Lang)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
