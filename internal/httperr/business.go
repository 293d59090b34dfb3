package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// AsBusiness extracts the business code carried by err, if any.
func AsBusiness(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

// StatusFor maps a business code to its HTTP status.
func StatusFor(code string) int {
	switch {
	case strings.HasSuffix(code, "_not_found"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_taken"),
		code == "already_exists",
		code == "time_conflict",
		code == "slot_blocked",
		code == "reward_already_used":
		return http.StatusConflict
	case code == "forbidden":
		return http.StatusForbidden
	case code == "invalid_credentials":
		return http.StatusUnauthorized
	case code == "storage_disabled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// ======================================================
// Postgres
// ======================================================

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

// TranslateConflict turns an overlap rejected by the exclusion
// constraint into time_conflict.
func TranslateConflict(err error) error {
	if IsExclusionConflict(err) {
		return ErrBusiness("time_conflict")
	}
	return err
}

// TranslateUnique turns a unique violation into the business code
// matching the violated constraint.
func TranslateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrBusiness("username_taken")
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrBusiness("email_taken")
	case strings.Contains(pgErr.ConstraintName, "name"):
		return ErrBusiness("name_taken")
	default:
		return ErrBusiness("already_exists")
	}
}
