package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/target"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds [name]",
	Short: "List the attribute catalog",
	Long: `Kinds prints every attribute the checker knows: accepted scopes, argument
arity, declaration subjects and where the attribute exists. With a name it
prints the full entry for that attribute.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKinds,
}

func init() {
	kindsCmd.Flags().String("format", "table", "output format (table|json)")
	kindsCmd.Flags().String("lang", "", "only list attributes available in this language mode")
	kindsCmd.Flags().String("arch", "", "only list attributes available on this architecture")
}

type kindJSON struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Scopes    []string `json:"scopes,omitempty"`
	Arity     string   `json:"arity"`
	Args      []string `json:"args,omitempty"`
	Subjects  string   `json:"subjects"`
	Spellings []string `json:"spellings"`
	Langs     []string `json:"langs"`
	Arches    []string `json:"arches"`
	Gate      string   `json:"gate"`
	Merge     string   `json:"merge"`
	Doc       string   `json:"doc,omitempty"`
}

func runKinds(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	langFlag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	archFlag, err := cmd.Flags().GetString("arch")
	if err != nil {
		return fmt.Errorf("failed to get arch flag: %w", err)
	}

	infos, err := selectKinds(args, langFlag, archFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case "table":
		if len(args) == 1 {
			printKind(out, infos[0])
			return nil
		}
		printKindTable(out, infos)
		return nil
	case "json":
		rows := make([]kindJSON, len(infos))
		for i, info := range infos {
			rows[i] = describeKind(info)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// selectKinds resolves a single name or filters the full catalog.
func selectKinds(args []string, langFlag, archFlag string) ([]*attrs.Info, error) {
	if len(args) == 1 {
		info, ok := attrs.Lookup(ast.SplitScope(args[0]))
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q", args[0])
		}
		return []*attrs.Info{info}, nil
	}

	var (
		lang    target.Lang
		arch    target.Arch
		hasLang = langFlag != ""
		hasArch = archFlag != ""
	)
	if hasLang {
		l, err := target.ParseLang(langFlag)
		if err != nil {
			return nil, err
		}
		lang = l
	}
	if hasArch {
		a, ok := target.ParseArch(archFlag)
		if !ok {
			return nil, fmt.Errorf("unknown architecture %q", archFlag)
		}
		arch = a
	}

	var out []*attrs.Info
	for _, info := range attrs.Infos() {
		if hasLang && !info.Langs.Has(lang) {
			continue
		}
		if hasArch && !info.Arches.Has(arch) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func arity(sh attrs.Shape) string {
	switch {
	case sh.Max == attrs.Unbounded:
		return strconv.Itoa(sh.Min) + "+"
	case sh.Min == sh.Max:
		return strconv.Itoa(sh.Min)
	default:
		return fmt.Sprintf("%d..%d", sh.Min, sh.Max)
	}
}

var spellingOrder = []ast.Spelling{ast.SpellingKeyword, ast.SpellingBracket, ast.SpellingLegacy, ast.SpellingPlatform}

func spellings(m ast.SpellingMask) []string {
	var out []string
	for _, s := range spellingOrder {
		if m.Has(s) {
			out = append(out, s.String())
		}
	}
	return out
}

func describeKind(info *attrs.Info) kindJSON {
	k := kindJSON{
		Name:      info.Name,
		Aliases:   info.Aliases,
		Scopes:    info.Scopes,
		Arity:     arity(info.Shape),
		Subjects:  info.Subjects.String(),
		Spellings: spellings(info.Spellings),
		Langs:     info.Langs.Names(),
		Arches:    info.Arches.Names(),
		Gate:      info.Gate.String(),
		Merge:     info.Merge.String(),
		Doc:       info.Doc,
	}
	for _, a := range info.Shape.Args {
		k.Args = append(k.Args, a.String())
	}
	return k
}

func printKindTable(w io.Writer, infos []*attrs.Info) {
	header := []string{"NAME", "SCOPES", "ARGS", "SUBJECTS", "LANGS", "ARCHES"}
	rows := [][]string{header}
	for _, info := range infos {
		k := describeKind(info)
		rows = append(rows, []string{
			k.Name,
			orDash(strings.Join(k.Scopes, ",")),
			k.Arity,
			k.Subjects,
			strings.Join(k.Langs, ","),
			strings.Join(k.Arches, ","),
		})
	}
	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, b.String())
	}
}

func printKind(w io.Writer, info *attrs.Info) {
	k := describeKind(info)
	fields := []struct{ label, value string }{
		{"name", k.Name},
		{"aliases", orDash(strings.Join(k.Aliases, ", "))},
		{"scopes", orDash(strings.Join(k.Scopes, ", "))},
		{"arity", k.Arity},
		{"args", orDash(strings.Join(k.Args, ", "))},
		{"subjects", k.Subjects},
		{"spellings", strings.Join(k.Spellings, ", ")},
		{"langs", strings.Join(k.Langs, ", ")},
		{"arches", strings.Join(k.Arches, ", ")},
		{"gate", k.Gate},
		{"merge", k.Merge},
		{"doc", orDash(k.Doc)},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-10s %s\n", f.label+":", f.value)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
