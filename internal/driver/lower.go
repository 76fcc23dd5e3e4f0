package driver

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"declattr/internal/ast"
	"declattr/internal/decl"
	"declattr/internal/source"
	"declattr/internal/types"
)

// lowerer turns a UnitSpec into declarations and parsed attributes, the
// way a parser front end would hand them to the engine.
type lowerer struct {
	file   *source.File
	b      *ast.Builder
	tys    *types.Interner
	tab    *decl.Table
	byName map[string]decl.ID
}

// fixtureError is a malformed unit description at pos.
type fixtureError struct {
	pos Pos
	err error
}

func (e *fixtureError) Error() string {
	return fmt.Sprintf("line %d: %v", e.pos.Line, e.err)
}

func (e *fixtureError) Unwrap() error { return e.err }

func errorAt(pos Pos, format string, args ...any) error {
	return &fixtureError{pos: pos, err: fmt.Errorf(format, args...)}
}

func (l *lowerer) offset(p Pos) uint32 {
	line, err := safecast.Conv[uint32](p.Line)
	if err != nil {
		panic(fmt.Errorf("line overflow: %w", err))
	}
	col, err := safecast.Conv[uint32](p.Column)
	if err != nil {
		panic(fmt.Errorf("column overflow: %w", err))
	}
	return l.file.Offset(line, col)
}

// span covers p up to the end of its line.
func (l *lowerer) span(p Pos) source.Span {
	start := l.offset(p)
	return source.Span{File: l.file.ID, Start: start, End: l.file.LineEnd(start)}
}

func (l *lowerer) parseType(pos Pos, spelling, fallback string) (types.TypeID, error) {
	if spelling == "" {
		spelling = fallback
	}
	id, err := l.tys.Parse(spelling)
	if err != nil {
		return types.NoTypeID, errorAt(pos, "type: %w", err)
	}
	return id, nil
}

// declare creates the declaration described by ds and its parameters.
func (l *lowerer) declare(ds *DeclSpec, parent decl.ID, defaultCat decl.Category) (decl.ID, error) {
	d := decl.Decl{
		Name:   l.b.StringsInterner.Intern(ds.Name),
		Parent: parent,
		Span:   l.span(ds.Pos),
		Value:  ds.Value,
	}

	d.Category = defaultCat
	if ds.Kind != "" {
		c, ok := decl.ParseCategory(ds.Kind)
		if !ok {
			return decl.NoID, errorAt(ds.Pos, "unknown declaration kind %q", ds.Kind)
		}
		d.Category = c
	}

	if ds.Parent != "" {
		p, ok := l.byName[ds.Parent]
		if !ok {
			return decl.NoID, errorAt(ds.Pos, "parent %q is not declared", ds.Parent)
		}
		d.Parent = p
	}

	switch {
	case ds.Storage != "":
		st, ok := decl.ParseStorage(ds.Storage)
		if !ok {
			return decl.NoID, errorAt(ds.Pos, "unknown storage %q", ds.Storage)
		}
		d.Storage = st
	case d.Category == decl.CatVariable && d.Parent.IsValid():
		d.Storage = decl.StorageAuto
	case d.Category == decl.CatVariable:
		d.Storage = decl.StorageStatic
	}

	fallback := "int"
	if d.Category == decl.CatFunction {
		fallback = "void"
	}
	ty, err := l.parseType(ds.Pos, ds.Type, fallback)
	if err != nil {
		return decl.NoID, err
	}
	d.Type = ty

	for _, name := range ds.Flags {
		f, ok := decl.ParseFlag(name)
		if !ok {
			return decl.NoID, errorAt(ds.Pos, "unknown flag %q", name)
		}
		d.Flags |= f
	}

	for _, tp := range ds.Template {
		param := decl.TemplateParam{Kind: decl.TParamValue}
		name := strings.TrimSpace(tp)
		for _, kw := range []string{"typename ", "class "} {
			if rest, ok := strings.CutPrefix(name, kw); ok {
				param.Kind = decl.TParamType
				name = strings.TrimSpace(rest)
			}
		}
		if name == "" {
			return decl.NoID, errorAt(ds.Pos, "empty template parameter")
		}
		param.Name = l.b.StringsInterner.Intern(name)
		d.TemplateParams = append(d.TemplateParams, param)
	}

	var id decl.ID
	if ds.Redeclare {
		prev, ok := l.byName[ds.Name]
		if !ok {
			return decl.NoID, errorAt(ds.Pos, "%q redeclares nothing", ds.Name)
		}
		id = l.tab.Redeclare(prev, d)
	} else {
		id = l.tab.Declare(d)
	}
	if ds.Name != "" {
		l.byName[ds.Name] = id
	}

	for i := range ds.Params {
		pid, err := l.declare(&ds.Params[i], id, decl.CatParam)
		if err != nil {
			return decl.NoID, err
		}
		fn := l.tab.Get(id)
		fn.Params = append(fn.Params, pid)
	}
	return id, nil
}

// attr builds the parsed form of one written attribute.
func (l *lowerer) attr(as *AttrSpec) (ast.ParsedAttr, error) {
	if as.Name == "" {
		return ast.ParsedAttr{}, errorAt(as.Pos, "attribute without a name")
	}
	spelling, ok := ast.ParseSpelling(as.Spelling)
	if !ok {
		return ast.ParsedAttr{}, errorAt(as.Pos, "unknown spelling %q", as.Spelling)
	}
	args := make([]ast.ExprID, 0, len(as.Args))
	for i, arg := range as.Args {
		base := l.offset(arg.Pos)
		if arg.Quoted {
			base++
		}
		id, err := ParseArg(l.b, l.file.ID, base, arg.Text)
		if err != nil {
			return ast.ParsedAttr{}, errorAt(arg.Pos, "%s argument %d: %w", as.Name, i+1, err)
		}
		args = append(args, id)
	}
	pa := l.b.Attr(l.span(as.Pos), spelling, as.Name, args...)
	pa.Implicit = as.Implicit
	return pa, nil
}

// substitution resolves the template arguments of an instantiation.
func (l *lowerer) substitution(is *InstSpec) (decl.Substitution, error) {
	subst := decl.Substitution{
		Values: make(map[source.StringID]int64, len(is.Values)),
		Types:  make(map[source.StringID]types.TypeID, len(is.Types)),
	}
	for name, v := range is.Values {
		subst.Values[l.b.StringsInterner.Intern(name)] = v
	}
	for name, spelling := range is.Types {
		ty, err := l.parseType(is.Pos, spelling, "")
		if err != nil {
			return decl.Substitution{}, err
		}
		subst.Types[l.b.StringsInterner.Intern(name)] = ty
	}
	return subst, nil
}
