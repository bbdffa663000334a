package kbju

import "errors"

var (
	// ErrInvalidInput covers non-positive body metrics and unknown enum values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAgeRestriction is returned for ages below 18; Mifflin-St Jeor is not
	// validated for minors.
	ErrAgeRestriction = errors.New("age restriction")
	// ErrInfeasibleMacros means protein and fat alone exceed the calorie target,
	// leaving a negative carbohydrate allocation. The inputs were individually
	// valid; the caller should raise calories or relax protein/fat.
	ErrInfeasibleMacros = errors.New("infeasible macro target")
)

// ErrorKind maps a Compute/SplitMacros error to a stable snake_case tag for
// API responses. Unknown errors map to "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrAgeRestriction):
		return "age_restriction"
	case errors.Is(err, ErrInfeasibleMacros):
		return "infeasible_macro_target"
	default:
		return "internal"
	}
}
