package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. With a constraintName the check narrows to that constraint;
// otherwise any duplicate-key error matches. SQLite test errors carry the
// constraint name too, so the string check covers both drivers.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
