package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the declattr CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored paints the major, minor and patch parts of a semantic version.
// Anything after the patch number is left as is.
func Colored(v string) string {
	major, rest, ok := strings.Cut(v, ".")
	if !ok {
		return v
	}
	minor, rest, ok := strings.Cut(rest, ".")
	if !ok {
		return v
	}
	end := strings.IndexAny(rest, "-+")
	if end < 0 {
		end = len(rest)
	}
	parts := []struct {
		c *color.Color
		s string
	}{{versionMajorColor, major}, {versionMinorColor, minor}, {versionPatchColor, rest[:end]}}
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		p.c.EnableColor()
		b.WriteString(p.c.Sprint(p.s))
	}
	b.WriteString(rest[end:])
	return b.String()
}
