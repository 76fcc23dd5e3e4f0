package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"declattr/internal/ast"
	"declattr/internal/config"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/observ"
	"declattr/internal/sema"
	"declattr/internal/source"
	"declattr/internal/target"
	"declattr/internal/trace"
	"declattr/internal/types"
)

// Options control how units are checked.
type Options struct {
	Engine           sema.Options
	MaxDiagnostics   int
	WarningsAsErrors bool
	NoWarnings       bool
	// Jobs bounds CheckPaths parallelism; 0 means GOMAXPROCS.
	Jobs int
	// Cache is optional. Fingerprint is mixed into its keys and must change
	// whenever a setting that affects results changes.
	Cache       *DiskCache
	Fingerprint string
	Observer    UnitObserver
	// Timings records per-phase durations in UnitResult.Timings.
	Timings bool
}

// OptionsFromConfig translates a loaded declattr.toml.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	eng, err := cfg.EngineOptions()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Engine:           eng,
		MaxDiagnostics:   cfg.Diagnostics.Max,
		WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		NoWarnings:       cfg.Diagnostics.NoWarnings,
		Fingerprint:      cfg.Fingerprint(),
	}, nil
}

// UnitResult is the outcome of checking one unit file.
type UnitResult struct {
	Path    string
	File    source.FileID
	Target  string
	Bag     *diag.Bag
	Decls   []DeclSnapshot
	Cached  bool
	Elapsed time.Duration
	// Timings is nil unless Options.Timings was set and the unit was
	// analyzed rather than restored from the cache.
	Timings *observ.Report
}

// CheckFile analyzes the unit stored in file. Malformed descriptions are
// reported as DrvFixture diagnostics, never as Go errors.
func CheckFile(ctx context.Context, fs *source.FileSet, file source.FileID, opts Options) *UnitResult {
	f := fs.Get(file)
	ctx, sp := trace.Start(ctx, trace.ScopeUnit, f.Path)
	began := time.Now()

	res := &UnitResult{Path: f.Path, File: file}
	key := unitKey(f.Hash, opts.Fingerprint)
	if opts.Cache != nil {
		cached, err := opts.Cache.Get(key)
		switch {
		case err == nil:
			res.restore(cached, file, opts.MaxDiagnostics)
			res.Elapsed = time.Since(began)
			sp.End("cached")
			return res
		case !errors.Is(err, ErrCacheMiss):
			trace.Point(ctx, trace.ScopeUnit, "cache", err.Error())
		}
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	res.Bag = diag.NewBag(opts.MaxDiagnostics)
	res.run(ctx, f, opts, timer)
	finish(res.Bag, opts)
	if timer != nil {
		report := timer.Report()
		res.Timings = &report
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, res.payload()); err != nil {
			trace.Point(ctx, trace.ScopeUnit, "cache", err.Error())
		}
	}
	res.Elapsed = time.Since(began)
	sp.End(fmt.Sprintf("%d diagnostics", res.Bag.Len()))
	return res
}

// CheckSource is CheckFile for in-memory content.
func CheckSource(ctx context.Context, fs *source.FileSet, name string, content []byte, opts Options) *UnitResult {
	return CheckFile(ctx, fs, fs.AddVirtual(name, content), opts)
}

func (res *UnitResult) fixtureError(f *source.File, err error) {
	sp := source.Span{File: f.ID}
	var fe *fixtureError
	if errors.As(err, &fe) {
		l := lowerer{file: f}
		sp = l.span(fe.pos)
	}
	res.Bag.Add(diag.New(diag.SevError, diag.DrvFixture, sp, err.Error()))
}

func (res *UnitResult) run(ctx context.Context, f *source.File, opts Options, timer *observ.Timer) {
	phase := timer.Begin("parse")
	spec, err := ParseUnit(f.Content)
	timer.End(phase, "")
	if err != nil {
		res.fixtureError(f, err)
		return
	}

	engOpts := opts.Engine
	if spec.Target != "" || spec.Lang != "" {
		triple, lang := engOpts.Target.Triple.Raw, engOpts.Target.Lang.String()
		if spec.Target != "" {
			triple = spec.Target
		}
		if triple == "" {
			triple = target.DefaultTriple
		}
		if spec.Lang != "" {
			lang = spec.Lang
		}
		info, err := target.NewInfo(triple, lang)
		if err != nil {
			res.fixtureError(f, err)
			return
		}
		engOpts.Target = info
	}
	res.Target = engOpts.Target.Triple.Raw

	tys := types.NewInterner()
	for name, rec := range spec.Records {
		tys.DefineRecord(name, types.RecordInfo{Size: rec.Size, Align: rec.Align})
	}
	b := ast.NewBuilder(nil)
	tab := decl.NewTable()
	eng := sema.NewEngine(tab, b, tys, engOpts)
	rep := diag.BagReporter{Bag: res.Bag}
	l := &lowerer{file: f, b: b, tys: tys, tab: tab, byName: make(map[string]decl.ID)}

	instances := make(map[decl.ID]string)
	phase = timer.Begin("apply")
	err = applyDecls(ctx, l, eng, spec.Decls, rep)
	timer.End(phase, fmt.Sprintf("%d decls", len(spec.Decls)))
	if err != nil {
		res.fixtureError(f, err)
	} else {
		phase = timer.Begin("instantiate")
		for i := range spec.Instantiate {
			is := &spec.Instantiate[i]
			id, ok := l.byName[is.Decl]
			if !ok {
				res.fixtureError(f, errorAt(is.Pos, "instantiation of undeclared %q", is.Decl))
				break
			}
			subst, err := l.substitution(is)
			if err != nil {
				res.fixtureError(f, err)
				break
			}
			if is.InPlace {
				eng.OnInstantiated(ctx, id, subst, rep)
				continue
			}
			sid := eng.Instantiate(ctx, id, subst, rep)
			instances[sid] = subst.Format(b.StringsInterner, tys)
		}
		timer.End(phase, "")
	}
	phase = timer.Begin("snapshot")
	res.Decls = snapshot(tab, b.StringsInterner, instances)
	timer.End(phase, "")
}

// applyDecls declares each entry and applies its attributes, then those of
// its parameters, in source order.
func applyDecls(ctx context.Context, l *lowerer, eng *sema.Engine, specs []DeclSpec, r diag.Reporter) error {
	for i := range specs {
		ds := &specs[i]
		id, err := l.declare(ds, decl.NoID, decl.CatVariable)
		if err != nil {
			return err
		}
		if err := applyAttrs(ctx, l, eng, id, ds.Attrs, r); err != nil {
			return err
		}
		params := l.tab.Get(id).Params
		for j := range ds.Params {
			if err := applyAttrs(ctx, l, eng, params[j], ds.Params[j].Attrs, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyAttrs(ctx context.Context, l *lowerer, eng *sema.Engine, id decl.ID, specs []AttrSpec, r diag.Reporter) error {
	for i := range specs {
		pa, err := l.attr(&specs[i])
		if err != nil {
			return err
		}
		eng.Apply(ctx, id, &pa, r)
	}
	return nil
}

// finish applies the warning options to a unit's diagnostics.
func finish(bag *diag.Bag, opts Options) {
	if opts.NoWarnings {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}
	if opts.WarningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	bag.Sort()
}
