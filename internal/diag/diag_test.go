package diag

import (
	"testing"

	"declattr/internal/source"
)

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ArgRange, "ARG1003"},
		{SubKind, "SUB2001"},
		{TgtUnsupported, "TGT3001"},
		{MrgConflict, "MRG4001"},
		{XckConstraint, "XCK5002"},
		{NotePrevious, "NTE9001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %s, want %s", tt.code, got, tt.want)
		}
		if tt.code == UnknownCode {
			continue
		}
		parsed, ok := ParseCode(tt.want)
		if !ok || parsed != tt.code {
			t.Errorf("ParseCode(%s) = %v, %v", tt.want, parsed, ok)
		}
	}
}

func TestEveryCodeHasTitle(t *testing.T) {
	for code, title := range codeDescription {
		if title == "" {
			t.Errorf("code %s has an empty title", code.ID())
		}
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(8)
	rep := BagReporter{Bag: bag}
	b := ReportError(rep, MrgConflict, source.Span{Start: 4, End: 9}, "num_banks", "8", "4").
		WithNote(source.Span{Start: 1, End: 2}, NotePrevious, "num_banks")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != MrgConflict || len(d.Args) != 3 || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Notes[0].Code != NotePrevious {
		t.Fatalf("unexpected note code %v", d.Notes[0].Code)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 3}
	r.Report(ArgRange, SevError, sp, []string{"bank_width", "6"}, nil)
	r.Report(ArgRange, SevError, sp, []string{"bank_width", "6"}, nil)
	r.Report(ArgRange, SevError, sp, []string{"bank_width", "12"}, nil)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestBagLimitSortAndFilter(t *testing.T) {
	bag := NewBag(3)
	bag.Add(New(SevWarning, TgtUnknownAttr, source.Span{Start: 9, End: 10}))
	bag.Add(New(SevError, ArgRange, source.Span{Start: 1, End: 2}))
	bag.Add(New(SevError, ArgArity, source.Span{Start: 1, End: 2}))
	if bag.Add(New(SevError, ArgType, source.Span{})) {
		t.Fatalf("bag must reject diagnostics past its limit")
	}
	bag.Sort()
	got := bag.Codes()
	want := []Code{ArgArity, ArgRange, TgtUnknownAttr}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted codes = %v, want %v", got, want)
		}
	}
	bag.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if bag.Len() != 2 || !bag.HasErrors() {
		t.Fatalf("filter left %d diagnostics", bag.Len())
	}
}

func TestCountingReporter(t *testing.T) {
	bag := NewBag(0)
	c := &CountingReporter{Next: BagReporter{Bag: bag}}
	c.Report(ArgRange, SevError, source.Span{}, nil, nil)
	c.Report(ArgNormalized, SevWarning, source.Span{}, nil, nil)
	if c.Errors != 1 || c.Warnings != 1 || bag.Len() != 2 {
		t.Fatalf("counts %d/%d, bag %d", c.Errors, c.Warnings, bag.Len())
	}
}
