package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// ErrDuplicateEntry reports a unique-index violation on Create. Services
// treat it as losing a race with a concurrent insert of the same row.
var ErrDuplicateEntry = errors.New("duplicate entry")

// isDuplicateKey prefers the typed pq SQLSTATE; the string fallback covers
// the sqlite test driver.
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
