package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"declattr/internal/config"
)

// settings is the loaded declattr.toml plus the directory relative paths in
// it are resolved against.
type settings struct {
	cfg  *config.Config
	path string // empty when defaults are in use
	base string
}

// loadSettings reads --config or discovers the nearest declattr.toml.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if explicit != "" {
		cfg, err := config.Load(explicit)
		if err != nil {
			return nil, err
		}
		return &settings{cfg: cfg, path: explicit, base: filepath.Dir(explicit)}, nil
	}
	cfg, path, err := config.Discover(wd)
	if err != nil {
		return nil, err
	}
	s := &settings{cfg: cfg, path: path, base: wd}
	if path != "" {
		s.base = filepath.Dir(path)
	}
	return s, nil
}

// resolve makes p relative to the settings file.
func (s *settings) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.base, p)
}

// applyCheckFlags overrides file settings with flags the user set
// explicitly, then revalidates.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	str := func(name string, dst *string) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
		return nil
	}
	boolean := func(name string, dst *bool) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
		return nil
	}

	for _, err := range []error{
		str("target", &cfg.Target.Triple),
		str("lang", &cfg.Target.Lang),
		str("format", &cfg.Diagnostics.Format),
		boolean("warnings-as-errors", &cfg.Diagnostics.WarningsAsErrors),
		boolean("no-warnings", &cfg.Diagnostics.NoWarnings),
		boolean("cache", &cfg.Cache.Enabled),
		str("cache-dir", &cfg.Cache.Dir),
	} {
		if err != nil {
			return err
		}
	}
	if flags.Changed("max-diagnostics") {
		v, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Diagnostics.Max = v
	}
	if cfg.Diagnostics.NoWarnings && cfg.Diagnostics.WarningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors cannot be used together")
	}
	return cfg.Validate()
}
