package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"declattr/internal/diagfmt"
	"declattr/internal/driver"
	"declattr/internal/source"
	"declattr/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit.yaml|directory>...",
	Short: "Check the attributes of one or more units",
	Long: `Check applies every attribute in the given unit files to its declaration,
runs merge and consistency checks and prints the diagnostics. Directories are
searched for *.yaml and *.yml units. The exit status is 1 when any unit has an
error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("target", "", "target triple (overrides declattr.toml)")
	checkCmd.Flags().String("lang", "", "language mode: c|c++|sycl|opencl|cuda (overrides declattr.toml)")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("no-warnings", false, "drop warnings")
	checkCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics kept per unit (0=unlimited)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("snapshot", false, "include the resulting attribute sets in json output")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged units from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "disk cache directory")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("timings", false, "print per-phase timings of analyzed units to stderr")
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cmd, st.cfg); err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, st.cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	opts, err := driver.OptionsFromConfig(st.cfg)
	if err != nil {
		return err
	}
	if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.Timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if st.cfg.Cache.Enabled {
		cache, err := driver.OpenDiskCache(st.resolve(st.cfg.Cache.Dir))
		if err != nil {
			return err
		}
		opts.Cache = cache
	}

	out, err := outputOptions(cmd, st.cfg.Diagnostics.Format)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	files, err := driver.ListUnits(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no unit files found")
	}

	var (
		fs      *source.FileSet
		results []*driver.UnitResult
	)
	if out.format == "pretty" && shouldUseTUI(mode) {
		fs, results, err = runCheckWithUI(cmd.Context(), files, opts)
	} else {
		fs, results, err = driver.CheckPaths(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}
	if wd, err := os.Getwd(); err == nil {
		fs.SetBaseDir(wd)
	}

	meta := diagfmt.SarifRunMeta{ToolName: "declattr", ToolVersion: version.Version, InvocationArgs: os.Args[1:]}
	if err := renderResults(cmd.OutOrStdout(), fs, results, out, meta); err != nil {
		return err
	}
	if opts.Timings && !out.quiet {
		if err := writeTimings(cmd.ErrOrStderr(), results); err != nil {
			return err
		}
	}
	if driver.Summarize(results).Failed() {
		return errCheckFailed
	}
	return nil
}

func outputOptions(cmd *cobra.Command, format string) (outputOpts, error) {
	out := outputOpts{format: format}
	if out.format == "" {
		out.format = "pretty"
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return out, fmt.Errorf("failed to get color flag: %w", err)
	}
	if out.color, err = useColor(colorFlag); err != nil {
		return out, err
	}
	if out.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.notes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return out, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if out.snapshot, err = cmd.Flags().GetBool("snapshot"); err != nil {
		return out, fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	pm, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if out.pathMode, err = diagfmt.ParsePathMode(pm); err != nil {
		return out, err
	}
	return out, nil
}

// runCheckWithUI runs the check while a progress view consumes unit events.
// Closing the view cancels the remaining units.
func runCheckWithUI(ctx context.Context, files []string, opts driver.Options) (*source.FileSet, []*driver.UnitResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.UnitEvent, 256)
	opts.Observer = func(ev driver.UnitEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	type outcome struct {
		fs      *source.FileSet
		results []*driver.UnitResult
		err     error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		fs, results, err := driver.CheckPaths(ctx, files, opts)
		outcomeCh <- outcome{fs: fs, results: results, err: err}
		close(events)
	}()

	uiErr := runProgress("checking units", files, events)
	cancel()
	res := <-outcomeCh
	if uiErr != nil {
		return res.fs, res.results, uiErr
	}
	return res.fs, res.results, res.err
}
