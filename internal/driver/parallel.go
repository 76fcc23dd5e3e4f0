package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/trace"
)

// UnitExts are the file extensions ListUnits picks up.
var UnitExts = []string{".yaml", ".yml"}

func isUnitFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range UnitExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ListUnits expands paths: files are kept as given, directories are walked
// for unit files. The result is sorted and free of duplicates.
func ListUnits(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, root := range paths {
		st, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isUnitFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// CheckPaths checks unit files in parallel. Files are loaded up front into
// one FileSet; results keep the order of files. Unreadable files produce a
// DrvLoad diagnostic. The only error returned is cancellation.
func CheckPaths(ctx context.Context, files []string, opts Options) (*source.FileSet, []*UnitResult, error) {
	ctx, sp := trace.Start(ctx, trace.ScopePass, "check")
	defer sp.End(fmt.Sprintf("%d units", len(files)))

	fileSet := source.NewFileSet()
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}

	results := make([]*UnitResult, len(files))
	if len(files) == 0 {
		return fileSet, results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			notify(opts.Observer, UnitEvent{Index: i, Path: path, Status: UnitStart})

			var res *UnitResult
			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.New(diag.SevError, diag.DrvLoad, source.NoSpan, path, loadErr.Error()))
				res = &UnitResult{Path: path, File: source.NoFileID, Bag: bag}
			} else {
				res = CheckFile(gctx, fileSet, fileIDs[i], opts)
			}
			// Indices are unique per goroutine; no lock needed.
			results[i] = res

			notify(opts.Observer, UnitEvent{
				Index:   i,
				Path:    path,
				Status:  UnitEnd,
				Cached:  res.Cached,
				Errors:  countErrors(res.Bag),
				Elapsed: res.Elapsed,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func notify(obs UnitObserver, ev UnitEvent) {
	if obs != nil {
		obs(ev)
	}
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}
