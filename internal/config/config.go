// Package config loads declattr.toml, the per-project settings file that
// fixes the target, diagnostic limits, tracing and the result cache.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/sema"
	"declattr/internal/target"
)

// FileName is the name looked up by Find.
const FileName = "declattr.toml"

// ErrNotFound is returned by Find when no declattr.toml exists between the
// start directory and the filesystem root.
var ErrNotFound = errors.New("no " + FileName + " found")

// Config mirrors declattr.toml.
type Config struct {
	Target      TargetConfig          `toml:"target"`
	Diagnostics DiagnosticsConfig     `toml:"diagnostics"`
	Trace       TraceConfig           `toml:"trace"`
	Cache       CacheConfig           `toml:"cache"`
	Gate        map[string]GateConfig `toml:"gate" validate:"dive"`
}

type TargetConfig struct {
	Triple string `toml:"triple" validate:"required,triple"`
	Lang   string `toml:"lang" validate:"required,lang"`
}

type DiagnosticsConfig struct {
	// Max caps the number of diagnostics kept per unit; 0 is unlimited.
	Max              int    `toml:"max" validate:"gte=0"`
	WarningsAsErrors bool   `toml:"warnings_as_errors"`
	NoWarnings       bool   `toml:"no_warnings"`
	Format           string `toml:"format" validate:"omitempty,oneof=pretty short json sarif"`
}

type TraceConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=off error phase detail debug"`
	Output string `toml:"output"`
	Format string `toml:"format" validate:"omitempty,oneof=auto text ndjson"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir" validate:"required_if=Enabled true"`
}

// GateConfig overrides where one attribute kind exists and what happens
// when it does not.
type GateConfig struct {
	Arches []string `toml:"arches" validate:"dive,arch"`
	Langs  []string `toml:"langs" validate:"dive,lang"`
	Policy string   `toml:"policy" validate:"omitempty,oneof=warn error silent ignore"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("triple", func(fl validator.FieldLevel) bool {
		_, err := target.ParseTriple(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
		_, err := target.ParseLang(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("arch", func(fl validator.FieldLevel) bool {
		_, ok := target.ParseArch(fl.Field().String())
		return ok
	})
	return v
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{
		Target:      TargetConfig{Triple: "x86_64-unknown-linux-gnu", Lang: "c++"},
		Diagnostics: DiagnosticsConfig{Format: "pretty"},
		Trace:       TraceConfig{Level: "off", Output: "-", Format: "auto"},
		Cache:       CacheConfig{Dir: ".declattr-cache"},
	}
}

// Find walks up from startDir to locate declattr.toml.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads path on top of Default and validates the result. Unknown keys
// are an error so that typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Discover finds and loads the nearest declattr.toml. When none exists it
// returns Default and an empty path.
func Discover(startDir string) (*Config, string, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		cfg := Default()
		return &cfg, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks field constraints and that every [gate.<kind>] table names
// a known attribute.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %q fails %q", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return err
	}
	for name := range c.Gate {
		if _, ok := attrs.Lookup(ast.SplitScope(name)); !ok {
			return fmt.Errorf("[gate.%s]: unknown attribute", name)
		}
	}
	return nil
}

// TargetInfo parses the configured triple and language.
func (c *Config) TargetInfo() (target.Info, error) {
	return target.NewInfo(c.Target.Triple, c.Target.Lang)
}

// EngineOptions converts the file into sema options.
func (c *Config) EngineOptions() (sema.Options, error) {
	info, err := c.TargetInfo()
	if err != nil {
		return sema.Options{}, err
	}
	opts := sema.Options{Target: info}
	if len(c.Gate) == 0 {
		return opts, nil
	}
	gate := sema.CatalogGate{Overrides: make(map[attrs.Kind]sema.GateOverride)}
	opts.Policies = make(map[attrs.Kind]attrs.GatePolicy)
	for name, g := range c.Gate {
		info, ok := attrs.Lookup(ast.SplitScope(name))
		if !ok {
			return sema.Options{}, fmt.Errorf("[gate.%s]: unknown attribute", name)
		}
		var o sema.GateOverride
		for _, a := range g.Arches {
			arch, ok := target.ParseArch(a)
			if !ok {
				return sema.Options{}, fmt.Errorf("[gate.%s]: unknown architecture %q", name, a)
			}
			o.Arches |= arch.Mask()
		}
		for _, l := range g.Langs {
			lang, err := target.ParseLang(l)
			if err != nil {
				return sema.Options{}, fmt.Errorf("[gate.%s]: %w", name, err)
			}
			o.Langs |= lang.Mask()
		}
		if o.Arches != 0 || o.Langs != 0 {
			gate.Overrides[info.Kind] = o
		}
		if g.Policy != "" {
			p, _ := attrs.ParseGatePolicy(g.Policy)
			opts.Policies[info.Kind] = p
		}
	}
	opts.Gate = gate
	return opts, nil
}

// Fingerprint identifies the settings that change analysis results. Trace
// and output format are excluded.
func (c *Config) Fingerprint() string {
	semantic := struct {
		Target TargetConfig          `toml:"target"`
		Max    int                   `toml:"max"`
		Werror bool                  `toml:"werror"`
		NoWarn bool                  `toml:"nowarn"`
		Gate   map[string]GateConfig `toml:"gate"`
	}{c.Target, c.Diagnostics.Max, c.Diagnostics.WarningsAsErrors, c.Diagnostics.NoWarnings, c.Gate}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(semantic); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:8])
}
