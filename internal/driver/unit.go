package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// UnitSpec is the YAML description of one translation unit: the
// declarations a parser would have produced, the attributes written on
// them and the template instantiations to perform afterwards.
//
//	target: spir64_fpga-unknown-unknown-sycldevice
//	lang: sycl
//	decls:
//	  - name: kernel
//	    kind: function
//	    flags: [kernel, definition]
//	    template: [N]
//	    attrs:
//	      - name: intel::reqd_sub_group_size
//	        args: [N]
//	instantiate:
//	  - decl: kernel
//	    values: {N: 16}
type UnitSpec struct {
	Target      string                `yaml:"target"`
	Lang        string                `yaml:"lang"`
	Records     map[string]RecordSpec `yaml:"records"`
	Decls       []DeclSpec            `yaml:"decls"`
	Instantiate []InstSpec            `yaml:"instantiate"`
}

// RecordSpec gives the layout of a struct type named in type spellings.
type RecordSpec struct {
	Size  uint64 `yaml:"size"`
	Align uint64 `yaml:"align"`
}

// Pos is the position of a YAML node, 1-based.
type Pos struct {
	Line   int
	Column int
}

// DeclSpec is one declaration. A scalar is shorthand for a declaration
// with only a type, which is how function parameters are usually written.
type DeclSpec struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Storage   string     `yaml:"storage"`
	Type      string     `yaml:"type"`
	Flags     []string   `yaml:"flags"`
	Params    []DeclSpec `yaml:"params"`
	Parent    string     `yaml:"parent"`
	Template  []string   `yaml:"template"`
	Value     int64      `yaml:"value"`
	Redeclare bool       `yaml:"redeclare"`
	Attrs     []AttrSpec `yaml:"attrs"`

	Pos Pos `yaml:"-"`
}

func (d *DeclSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*d = DeclSpec{Type: n.Value, Pos: Pos{n.Line, n.Column}}
		return nil
	}
	type plain DeclSpec
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*d = DeclSpec(p)
	d.Pos = Pos{n.Line, n.Column}
	return nil
}

// AttrSpec is one written attribute. A scalar is shorthand for an
// argument-less bracket attribute.
type AttrSpec struct {
	Name     string    `yaml:"name"`
	Spelling string    `yaml:"spelling"`
	Args     []ArgSpec `yaml:"args"`
	Implicit bool      `yaml:"implicit"`

	Pos Pos `yaml:"-"`
}

func (a *AttrSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*a = AttrSpec{Name: n.Value, Pos: Pos{n.Line, n.Column}}
		return nil
	}
	type plain AttrSpec
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*a = AttrSpec(p)
	a.Pos = Pos{n.Line, n.Column}
	return nil
}

// ArgSpec is the source text of one argument expression.
type ArgSpec struct {
	Text string
	Pos  Pos
	// Quoted is set when the YAML scalar was quoted, so the text starts one
	// column after Pos.
	Quoted bool
}

func (a *ArgSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: argument must be a scalar", n.Line)
	}
	*a = ArgSpec{
		Text:   n.Value,
		Pos:    Pos{n.Line, n.Column},
		Quoted: n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0,
	}
	return nil
}

// InstSpec instantiates a template declaration. By default a new
// specialization is created; InPlace resolves the pattern's own pending
// attributes instead.
type InstSpec struct {
	Decl    string            `yaml:"decl"`
	Values  map[string]int64  `yaml:"values"`
	Types   map[string]string `yaml:"types"`
	InPlace bool              `yaml:"in_place"`

	Pos Pos `yaml:"-"`
}

func (s *InstSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain InstSpec
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*s = InstSpec(p)
	s.Pos = Pos{n.Line, n.Column}
	return nil
}

// ParseUnit decodes a unit description. Unknown top-level keys are errors.
func ParseUnit(content []byte) (*UnitSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	var spec UnitSpec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return &spec, nil
		}
		return nil, err
	}
	return &spec, nil
}
