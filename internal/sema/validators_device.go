package sema

import (
	"strconv"
	"strings"

	"declattr/internal/attrs"
	"declattr/internal/diag"
)

func validateDims(c *vctx) (attrs.Payload, bool) {
	vals := make([]int64, 0, len(c.args))
	ok := true
	for i := range c.args {
		v, good := c.checkInt(i, Positive, Fits32)
		ok = ok && good
		vals = append(vals, v)
	}
	return attrs.MakeDims(vals...), ok
}

// validateSubGroupSize also checks the size against what the device offers.
func validateSubGroupSize(c *vctx) (attrs.Payload, bool) {
	v, ok := c.checkInt(0, Positive)
	if !ok {
		return nil, false
	}
	if sizes := c.e.opts.Target.Triple.SubGroupSizes(); len(sizes) > 0 {
		if _, ok := c.checkInt(0, OneOf(sizes...)); !ok {
			return nil, false
		}
	}
	return attrs.Int{V: v}, true
}

// validateNoGlobalWorkOffset normalizes the optional argument to 0 or 1;
// no argument means 1.
func validateNoGlobalWorkOffset(c *vctx) (attrs.Payload, bool) {
	if len(c.args) == 0 {
		return attrs.Int{V: 1}, true
	}
	return attrs.Int{V: boolInt(c.args[0].Int != 0)}, true
}

var fpgaMemoryKinds = []string{"DEFAULT", "MLAB", "BLOCK_RAM"}

func validateFPGAMemory(c *vctx) (attrs.Payload, bool) {
	if len(c.args) == 0 {
		return attrs.Str{V: "DEFAULT"}, true
	}
	c.args[0].Str = strings.ToUpper(c.args[0].Str)
	v, ok := c.checkWord(0, fpgaMemoryKinds...)
	return attrs.Str{V: v}, ok
}

// validateBankBits requires distinct, non-negative address bits.
func validateBankBits(c *vctx) (attrs.Payload, bool) {
	seen := make(map[int64]bool, len(c.args))
	out := make([]int64, 0, len(c.args))
	ok := true
	for i := range c.args {
		v, good := c.checkInt(i, InRange(0, 63))
		if !good {
			ok = false
			continue
		}
		if seen[v] {
			diag.ReportError(c.r, diag.ArgDuplicateIndex, c.args[i].Span, c.info.Name,
				strconv.Itoa(i+1), c.args[i].Text()).Emit()
			ok = false
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return attrs.IntList{V: out}, ok
}

func validateMerge(c *vctx) (attrs.Payload, bool) {
	name := c.args[0].Str
	if name == "" {
		c.rangeError(0, c.args[0].Text(), "non-empty")
		return nil, false
	}
	dir, ok := c.checkWord(1, "depth", "width")
	return attrs.MergeSpec{Name: name, Direction: dir}, ok
}
