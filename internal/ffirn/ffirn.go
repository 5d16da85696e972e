// Package ffirn implements the field grammars (FFIRN formats) of USMTF
// records. Each grammar is an independent function over a single field that
// returns either a parsed value or the structured errors explaining why the
// field does not match. Grammars compose with OneOf, ByDescriptor and
// Nullable.
package ffirn

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"usmtf_importer/internal/mtf"
)

// Result is the outcome of applying a grammar to one field.
type Result[T any] struct {
	Value  T
	Errors []mtf.ValidationError
}

// OK reports whether the grammar matched.
func (r Result[T]) OK() bool { return len(r.Errors) == 0 }

// Grammar parses and validates one field.
type Grammar[T any] func(f mtf.Field) Result[T]

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func fail[T any](summary, value, hint string) Result[T] {
	return Result[T]{Errors: []mtf.ValidationError{{Summary: summary, Value: value, Hint: hint}}}
}

func failWith[T any](errs []mtf.ValidationError) Result[T] {
	return Result[T]{Errors: errs}
}

// OneOf tries each alternative in order and returns the first match. Errors
// from alternatives that did not match are only reported when none of them
// matched.
func OneOf[T any](alts ...Grammar[T]) Grammar[T] {
	return func(f mtf.Field) Result[T] {
		var errs []mtf.ValidationError
		for _, g := range alts {
			r := g(f)
			if r.OK() {
				return r
			}
			errs = append(errs, r.Errors...)
		}
		return failWith[T](errs)
	}
}

// ByDescriptor selects a grammar from the field descriptor. Fields without a
// descriptor use fallback; a nil fallback makes the descriptor mandatory.
func ByDescriptor[T any](fallback Grammar[T], cases map[string]Grammar[T]) Grammar[T] {
	return func(f mtf.Field) Result[T] {
		if !f.HasDescriptor() {
			if fallback == nil {
				return fail[T]("Missing descriptor", f.Raw(), "one of "+joinKeys(cases))
			}
			return fallback(f)
		}
		g, ok := cases[f.Descriptor()]
		if !ok {
			return fail[T]("Unknown descriptor", f.Descriptor(), "one of "+joinKeys(cases))
		}
		return g(f)
	}
}

// Nullable accepts the null field "-" as the zero value of T.
func Nullable[T any](g Grammar[T]) Grammar[T] {
	return func(f mtf.Field) Result[T] {
		if f.IsNull() {
			var zero T
			return ok(zero)
		}
		return g(f)
	}
}

// Map converts the value of a successful match.
func Map[T, U any](g Grammar[T], fn func(T) U) Grammar[U] {
	return func(f mtf.Field) Result[U] {
		r := g(f)
		if !r.OK() {
			return failWith[U](r.Errors)
		}
		return ok(fn(r.Value))
	}
}

// Matches accepts field content that matches re in full.
func Matches(name string, re *regexp.Regexp, hint string) Grammar[string] {
	return func(f mtf.Field) Result[string] {
		if !re.MatchString(f.Content()) {
			return fail[string](name+" is malformed", f.Content(), hint)
		}
		return ok(f.Content())
	}
}

// Enumerated accepts content that is exactly one of allowed.
func Enumerated(name string, allowed ...string) Grammar[string] {
	return func(f mtf.Field) Result[string] {
		for _, a := range allowed {
			if f.Content() == a {
				return ok(a)
			}
		}
		return fail[string](name+" is not a permitted value", f.Content(), "one of "+strings.Join(allowed, ", "))
	}
}

// Count accepts an unsigned integer in [lo, hi].
func Count(name string, lo, hi int) Grammar[int] {
	return func(f mtf.Field) Result[int] {
		s := strings.TrimSpace(f.Content())
		if !isDigits(s) {
			return fail[int](name+" is not a number", f.Content(), "digits only")
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < lo || n > hi {
			return fail[int](name+" is out of range", f.Content(), strconv.Itoa(lo)+"-"+strconv.Itoa(hi))
		}
		return ok(n)
	}
}

// ParseFreeText accepts any non-empty content, including the null "-".
func ParseFreeText(f mtf.Field) Result[string] {
	if strings.TrimSpace(f.Content()) == "" {
		return fail[string]("Free text is empty", f.Raw(), "at least one character")
	}
	return ok(f.Content())
}

// Apply runs g over the 1-indexed field i of rec. Any failure, including a
// missing field, is recorded on rec.
func Apply[T any](rec mtf.Record, i int, g Grammar[T]) (T, bool) {
	var zero T
	f, err := rec.Field(i)
	if err != nil {
		rec.AddError("Missing field "+strconv.Itoa(i)+" of "+rec.Type(), "", "at least "+strconv.Itoa(i)+" fields")
		return zero, false
	}
	r := g(f)
	for _, e := range r.Errors {
		rec.AddError(e.Summary, e.Value, e.Hint)
	}
	return r.Value, r.OK()
}

// ApplyOptional is Apply for trailing fields that may be absent.
func ApplyOptional[T any](rec mtf.Record, i int, g Grammar[T]) (T, bool) {
	if i > rec.FieldCount() {
		var zero T
		return zero, false
	}
	return Apply(rec, i, g)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func joinKeys[T any](m map[string]Grammar[T]) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// Inner applies g to the content of a descriptor-keyed field, so that
// DEPLOC:LATM:2037N05934E is parsed as LATM:2037N05934E.
func Inner[T any](g Grammar[T]) Grammar[T] {
	return func(f mtf.Field) Result[T] {
		return g(mtf.NewField(f.Content()))
	}
}
