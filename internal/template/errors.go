package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTemplate is returned when a template name is not present
// in the registry.
var ErrUnknownTemplate = errors.New("unknown template")

// UnresolvedPlaceholderError reports placeholder tokens that had no
// value at fill time. It is returned in strict mode only; non-strict
// enforcement leaves the tokens visible instead.
type UnresolvedPlaceholderError struct {
	Tokens []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return "unresolved placeholders: " + strings.Join(e.Tokens, ", ")
}

// Validation rule names carried by StrictValidationError.
const (
	RuleSinglePreamble = "single_preamble"
	RuleNoForbidden    = "no_forbidden_macros"
	RuleNonEmptyBody   = "non_empty_body"
)

// StrictValidationError reports the structural rule that the final
// document violated. Validation is a gate, not a repair step: repair
// already happened in the sanitizer, so callers must re-generate or
// fall back to non-strict mode.
type StrictValidationError struct {
	Rule   string
	Detail string
}

func (e *StrictValidationError) Error() string {
	return fmt.Sprintf("strict validation failed (%s): %s", e.Rule, e.Detail)
}
