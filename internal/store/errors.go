package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint
// (student_id, nickname, email, or token).
var ErrConflict = errors.New("conflict")

const uniqueViolation = "23505"

// mapWriteErr translates a postgres unique-violation into ErrConflict so
// callers never depend on driver error codes. Concurrent writers racing
// for the same unique value see exactly one success and one ErrConflict.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
