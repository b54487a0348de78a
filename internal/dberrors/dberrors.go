// Package dberrors turns store failures into the numeric codes and
// user-facing messages the API reports. Codes follow SQLite's primary
// result codes; postgres SQLSTATEs are folded onto the same set.
package dberrors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	CodeError      = 1
	CodeAbort      = 4
	CodeInterrupt  = 9
	CodeConstraint = 19
)

const fallbackMessage = "We ran into an error"

// Message maps a store error code to the text shown to API clients.
func Message(code int) string {
	switch code {
	case CodeError:
		return "We ran into an error."
	case CodeAbort, CodeInterrupt:
		return "Operation aborted"
	case CodeConstraint:
		return "Another record with that value exists"
	default:
		return fallbackMessage
	}
}

// Code extracts a store error code from err. Errors that carry no
// recognizable code report 0, which Message treats as unmapped.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return int(sqliteErr.Code)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeInterrupt
	}

	return 0
}

// MessageFor is Message(Code(err)).
func MessageFor(err error) string {
	return Message(Code(err))
}

func fromSQLState(state string) int {
	switch {
	case strings.HasPrefix(state, "23"): // integrity_constraint_violation
		return CodeConstraint
	case state == "57014": // query_canceled
		return CodeInterrupt
	case strings.HasPrefix(state, "40"): // transaction_rollback
		return CodeAbort
	default:
		return CodeError
	}
}
