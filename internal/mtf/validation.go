package mtf

import (
	"fmt"
	"log/slog"
)

// ValidationError is a non-fatal grammar or extraction failure.
type ValidationError struct {
	Summary string `json:"summary"`
	Value   string `json:"value"`
	Hint    string `json:"hint"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %q (expected %s)", e.Summary, e.Value, e.Hint)
}

// Validatable accumulates validation errors. It is embedded by records,
// messages and every entity derived from them.
type Validatable struct {
	errs []ValidationError
}

func (v *Validatable) IsValid() bool { return len(v.errs) == 0 }

func (v *Validatable) AddError(summary, value, hint string) {
	v.errs = append(v.errs, ValidationError{Summary: summary, Value: value, Hint: hint})
}

func (v *Validatable) AddErrors(errs []ValidationError) {
	v.errs = append(v.errs, errs...)
}

// Errors returns a copy of the accumulated errors.
func (v *Validatable) Errors() []ValidationError {
	out := make([]ValidationError, len(v.errs))
	copy(out, v.errs)
	return out
}

// LogErrors writes one warning per accumulated error.
func (v *Validatable) LogErrors(logger *slog.Logger) {
	for _, e := range v.errs {
		logger.Warn("validation error",
			slog.String("summary", e.Summary),
			slog.String("value", e.Value),
			slog.String("hint", e.Hint))
	}
}
