package sema

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"declattr/internal/diag"
)

// Check is a numeric constraint on one integer argument. Token names the
// constraint in ArgRange diagnostics.
type Check struct {
	Token string
	ok    func(int64) bool
}

// Holds reports whether v satisfies c.
func (c Check) Holds(v int64) bool { return c.ok(v) }

var (
	Positive    = Check{Token: "positive", ok: func(v int64) bool { return v > 0 }}
	NonNegative = Check{Token: "non-negative", ok: func(v int64) bool { return v >= 0 }}
	PowerOfTwo  = Check{Token: "power-of-two", ok: isPowerOfTwo}
	Fits32      = Check{Token: "fits-32", ok: func(v int64) bool {
		_, err := safecast.Conv[uint32](v)
		return err == nil
	}}
)

// InRange accepts lo <= v <= hi.
func InRange(lo, hi int64) Check {
	return Check{
		Token: fmt.Sprintf("range:%d..%d", lo, hi),
		ok:    func(v int64) bool { return v >= lo && v <= hi },
	}
}

// OneOf accepts exactly the listed values.
func OneOf(vals ...int64) Check {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return Check{
		Token: "one-of:" + strings.Join(parts, "|"),
		ok: func(v int64) bool {
			for _, x := range vals {
				if x == v {
					return true
				}
			}
			return false
		},
	}
}

func isPowerOfTwo(v int64) bool { return v > 0 && v&(v-1) == 0 }

// checkInt applies checks in order and reports the first that fails.
func (c *vctx) checkInt(i int, checks ...Check) (int64, bool) {
	v := c.args[i]
	for _, chk := range checks {
		if !chk.Holds(v.Int) {
			c.rangeError(i, v.Text(), chk.Token)
			return v.Int, false
		}
	}
	return v.Int, true
}

// checkWord accepts a string or identifier argument from a closed vocabulary.
func (c *vctx) checkWord(i int, words ...string) (string, bool) {
	v := c.args[i]
	for _, w := range words {
		if v.Str == w {
			return w, true
		}
	}
	c.rangeError(i, v.Text(), "one-of:"+strings.Join(words, "|"))
	return v.Str, false
}

func (c *vctx) rangeError(i int, value, token string) {
	diag.ReportError(c.r, diag.ArgRange, c.args[i].Span, c.info.Name, strconv.Itoa(i+1), value, token).Emit()
}
