package target

import (
	"fmt"
	"strings"
)

// Lang is the source language mode.
type Lang uint8

const (
	LangC Lang = iota
	LangCXX
	LangSYCL
	LangOpenCL
	LangCUDA
)

var langNames = [...]string{
	LangC:      "c",
	LangCXX:    "c++",
	LangSYCL:   "sycl",
	LangOpenCL: "opencl",
	LangCUDA:   "cuda",
}

func (l Lang) String() string {
	if int(l) < len(langNames) {
		return langNames[l]
	}
	return "unknown"
}

// ParseLang accepts language names case-insensitively.
func ParseLang(s string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "c11", "c17", "c23":
		return LangC, nil
	case "c++", "cxx", "cpp", "c++17", "c++20":
		return LangCXX, nil
	case "sycl":
		return LangSYCL, nil
	case "opencl", "cl":
		return LangOpenCL, nil
	case "cuda":
		return LangCUDA, nil
	}
	return LangC, fmt.Errorf("unknown language %q", s)
}

// HasTemplates reports whether declarations can be value-dependent.
func (l Lang) HasTemplates() bool {
	return l == LangCXX || l == LangSYCL || l == LangCUDA
}

// LangMask is a set of language modes.
type LangMask uint8

func (l Lang) Mask() LangMask { return 1 << l }

const (
	LangsC      LangMask = 1 << LangC
	LangsCXX    LangMask = 1<<LangCXX | 1<<LangSYCL | 1<<LangCUDA
	LangsDevice LangMask = 1<<LangSYCL | 1<<LangOpenCL | 1<<LangCUDA
	LangsAll    LangMask = 1<<LangC | LangsCXX | 1<<LangOpenCL
)

func (m LangMask) Has(l Lang) bool { return m&l.Mask() != 0 }

// Names lists the languages in m.
func (m LangMask) Names() []string {
	if m == LangsAll {
		return []string{"*"}
	}
	var out []string
	for l := LangC; int(l) < len(langNames); l++ {
		if m.Has(l) {
			out = append(out, l.String())
		}
	}
	return out
}

// Info bundles everything gating and validators need about the target.
type Info struct {
	Triple Triple
	Lang   Lang
}

// NewInfo parses a triple and language.
func NewInfo(triple, lang string) (Info, error) {
	t, err := ParseTriple(triple)
	if err != nil {
		return Info{}, err
	}
	l, err := ParseLang(lang)
	if err != nil {
		return Info{}, err
	}
	return Info{Triple: t, Lang: l}, nil
}
