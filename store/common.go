package store

import "errors"

var (
	// ErrAlreadyExists is returned by Create methods when a unique
	// constraint is violated. Callers use find-or-create semantics:
	// retry with a find instead of treating this as a hard failure.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict is returned by compare-and-swap writes when the
	// stored version no longer matches the expected one.
	ErrVersionConflict = errors.New("version conflict")
)

// CEFRLevels are the valid proficiency tiers, lowest to highest.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// IsValidCEFRLevel reports whether level is one of A1..C2.
func IsValidCEFRLevel(level string) bool {
	for _, l := range CEFRLevels {
		if l == level {
			return true
		}
	}
	return false
}
