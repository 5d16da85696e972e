package ffirn

import (
	"strconv"
	"strings"

	"usmtf_importer/internal/mtf"
)

// scan walks fixed character offsets of one field. The first failed check
// is kept and every later check becomes a no-op, so a grammar can be written
// as a straight sequence of checks.
type scan struct {
	s   string
	err *mtf.ValidationError
}

func (c *scan) failed() bool { return c.err != nil }

func (c *scan) fail(summary, value, hint string) {
	if c.err == nil {
		c.err = &mtf.ValidationError{Summary: summary, Value: value, Hint: hint}
	}
}

func (c *scan) errors() []mtf.ValidationError {
	if c.err == nil {
		return nil
	}
	return []mtf.ValidationError{*c.err}
}

// length requires the content length to lie in [lo, hi].
func (c *scan) length(name string, lo, hi int) {
	if c.failed() {
		return
	}
	if n := len(c.s); n < lo || n > hi {
		hint := strconv.Itoa(lo) + " characters"
		if lo != hi {
			hint = strconv.Itoa(lo) + "-" + strconv.Itoa(hi) + " characters"
		}
		c.fail(name+" has the wrong length", c.s, hint)
	}
}

// number checks that s[from:to] is all digits with a value in [lo, hi].
func (c *scan) number(name string, from, to, lo, hi int) string {
	if c.failed() {
		return ""
	}
	sub := c.s[from:to]
	n, err := strconv.Atoi(sub)
	if !isDigits(sub) || err != nil || n < lo || n > hi {
		c.fail(name+" is out of range", sub, strconv.Itoa(lo)+"-"+strconv.Itoa(hi))
		return ""
	}
	return sub
}

// oneOf checks that s[from:to] is one of allowed.
func (c *scan) oneOf(name string, from, to int, allowed []string) string {
	if c.failed() {
		return ""
	}
	sub := c.s[from:to]
	for _, a := range allowed {
		if sub == a {
			return sub
		}
	}
	c.fail(name+" is not a permitted value", sub, "one of "+strings.Join(allowed, ", "))
	return ""
}

// literal checks that s[from:to] is exactly want.
func (c *scan) literal(name string, from, to int, want string) {
	if c.failed() {
		return
	}
	if sub := c.s[from:to]; sub != want {
		c.fail(name+" is missing", sub, want)
	}
}
