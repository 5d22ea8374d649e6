package orchestration

import (
	"fmt"
	"strings"

	apperrors "github.com/agbru/fanout/internal/errors"
)

// Policy selects how the settled outcomes of a batch are combined.
type Policy string

const (
	// Process requires every call to succeed and joins values with a space.
	Process Policy = "process"
	// CompletionOrder requires every call to succeed and returns values in arrival order.
	CompletionOrder Policy = "completion-order"
	// FailFast is the atomic policy: all values joined with ", " or a failure.
	FailFast Policy = "fail-fast"
	// FailFastShortCircuit is FailFast that cancels pending siblings on the first failure.
	FailFastShortCircuit Policy = "fail-fast-short-circuit"
	// FailPartial is the best-effort policy: failed slots are dropped.
	FailPartial Policy = "fail-partial"
	// FailSoft is the fallback policy: failed slots are replaced by a fallback value.
	FailSoft Policy = "fail-soft"
)

// Policies lists every supported policy in display order.
func Policies() []Policy {
	return []Policy{Process, CompletionOrder, FailFast, FailFastShortCircuit, FailPartial, FailSoft}
}

// String returns the policy name.
func (p Policy) String() string { return string(p) }

// Strict reports whether a single worker failure fails the whole aggregate.
func (p Policy) Strict() bool {
	switch p {
	case FailPartial, FailSoft:
		return false
	default:
		return true
	}
}

// ParsePolicy resolves a policy by name (case-insensitive, '_' accepted for '-').
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, p := range Policies() {
		if string(p) == normalized {
			return p, nil
		}
	}
	return "", apperrors.ValidationError{Field: "policy", Message: fmt.Sprintf("unknown policy %q", name)}
}
