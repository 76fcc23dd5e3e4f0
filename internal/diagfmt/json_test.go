package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"declattr/internal/diag"
	"declattr/internal/source"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		code diag.Code
		args []string
		want string
	}{
		{diag.ArgArity, []string{"aligned", "3", "0", "1"}, "'aligned' takes 0 to 1 argument(s), 3 given"},
		{diag.ArgArity, []string{"nonnull", "0", "1", "*"}, "'nonnull' takes at least 1 argument(s), 0 given"},
		{diag.ArgArity, []string{"hot", "1", "0", "0"}, "'hot' takes 0 argument(s), 1 given"},
		{diag.ArgType, []string{"aligned", "1", "integer"}, "argument 1 of 'aligned' must be an integer"},
		{diag.ArgRange, []string{"num_banks", "1", "3", "power-of-two"}, "argument 1 of 'num_banks' is 3; expected a power of two"},
		{diag.ArgRange, []string{"bank_bits", "2", "70", "range:0..63"}, "argument 2 of 'bank_bits' is 70; expected a value from 0 to 63"},
		{diag.ArgRange, []string{"reqd_sub_group_size", "1", "7", "one-of:8|16|32"}, "argument 1 of 'reqd_sub_group_size' is 7; expected one of 8, 16, 32"},
		{diag.ArgParamIndex, []string{"nonnull", "1", "4", "out-of-range"}, "argument 1 of 'nonnull' (4) does not name a usable parameter: index is out of range"},
		{diag.SubSignature, []string{"noreturn", "some-new-reason"}, "'noreturn' does not fit this declaration: some new reason"},
		{diag.TgtUnsupported, []string{"dllexport", "x86_64-unknown-linux-gnu", "c++"}, "'dllexport' is not supported for x86_64-unknown-linux-gnu (c++)"},
		{diag.XckConstraint, []string{"num_banks", "bank_bits", "banks-pow-bits", "4", "8"}, "'num_banks' is inconsistent with 'bank_bits': bank bits select 4 banks but 8 are declared"},
		{diag.DrvFixture, []string{"line 3: unknown declaration kind \"macro\""}, "line 3: unknown declaration kind \"macro\""},
		{diag.ArgInfo, []string{"x"}, "Attribute argument information: x"},
		{diag.ArgInfo, nil, "Attribute argument information"},
		{diag.ArgRange, []string{"aligned"}, "argument ? of 'aligned' is ?; expected ?"},
	}
	for _, tt := range tests {
		t.Run(tt.code.ID(), func(t *testing.T) {
			got := Message(diag.New(diag.SevError, tt.code, source.NoSpan, tt.args...))
			if got != tt.want {
				t.Fatalf("Message = %q, want %q", got, tt.want)
			}
		})
	}

	n := diag.Note{Code: diag.NoteImplicit, Args: []string{"numbanks", "bank_bits"}}
	if got := NoteMessage(n); got != "'numbanks' was added implicitly by 'bank_bits'" {
		t.Fatalf("NoteMessage = %q", got)
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("unit.yaml", []byte(unitText))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.MrgConflict, alignedSpan(fileID), "aligned", "16", "8").
		WithNote(source.Span{File: fileID, Start: 17, End: 18}, diag.NotePrevious, "aligned"))
	bag.Add(diag.New(diag.SevError, diag.DrvLoad, source.NoSpan, "gone.yaml", "missing"))
	bag.Add(diag.New(diag.SevWarning, diag.TgtUnknownAttr, alignedSpan(fileID), "frobnicate"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, Max must truncate", out.Count)
	}

	first := out.Diagnostics[0]
	if first.Code != "MRG4001" || first.Severity != "ERROR" || first.Message != "'aligned' redeclared as 16, previously 8" {
		t.Fatalf("first = %+v", first)
	}
	if first.Location == nil || first.Location.StartLine != 3 || first.Location.StartCol != 13 || first.Location.EndByte != 38 {
		t.Fatalf("location = %+v", first.Location)
	}
	if len(first.Notes) != 1 || first.Notes[0].Code != "NTE9001" || first.Notes[0].Location.StartLine != 2 {
		t.Fatalf("notes = %+v", first.Notes)
	}
	if out.Diagnostics[1].Location != nil {
		t.Fatalf("load failure has no location: %+v", out.Diagnostics[1].Location)
	}
	if !strings.Contains(buf.String(), "\n  \"diagnostics\"") {
		t.Fatalf("output is not indented:\n%s", buf.String())
	}
}

func TestJSONWithoutNotesOrPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("unit.yaml", []byte(unitText))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.XckMutualExclusion, alignedSpan(fileID), "hot", "cold").
		WithNote(source.Span{File: fileID, Start: 17, End: 18}, diag.NoteConflicting, "cold"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	d := out.Diagnostics[0]
	if d.Notes != nil || d.Location.StartLine != 0 {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if len(d.Args) != 2 || d.Args[1] != "cold" {
		t.Fatalf("args = %v", d.Args)
	}
}

func TestSarif(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("unit.yaml", []byte(unitText))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.XckMutualExclusion, alignedSpan(fileID), "hot", "cold").
		WithNote(source.Span{File: fileID, Start: 17, End: 18}, diag.NoteConflicting, "cold"))
	bag.Add(diag.New(diag.SevWarning, diag.TgtUnknownAttr, alignedSpan(fileID), "frobnicate"))
	bag.Add(diag.New(diag.SevWarning, diag.TgtUnknownAttr, alignedSpan(fileID), "frobnicate"))

	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "declattr", ToolVersion: "0.1.0", InvocationArgs: []string{"check", "unit.yaml"}}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 3 || run.Results[0].Level != "error" || run.Results[1].Level != "warning" {
		t.Fatalf("results = %+v", run.Results)
	}
	loc := run.Results[0].Locations[0].PhysicalLocation.Region
	if loc.StartLine != 3 || loc.StartColumn != 13 || loc.ByteLength != 7 {
		t.Fatalf("region = %+v", loc)
	}
	if len(run.Results[0].RelatedLocations) != 1 {
		t.Fatalf("related = %+v", run.Results[0].RelatedLocations)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("errors present but run marked successful")
	}
}
