package db

import "strings"

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

// IsMissingOrderingSupport reports whether the error indicates the backend
// cannot serve the requested ORDER BY, typically because a referenced column
// or supporting index is absent on that table. Callers use it to fall back to
// an unordered scan with an in-memory sort.
func IsMissingOrderingSupport(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 42703") ||
		strings.Contains(msg, "SQLSTATE 42P10") ||
		strings.Contains(msg, "does not exist") && strings.Contains(msg, "column") ||
		strings.Contains(msg, "requires an index")
}
