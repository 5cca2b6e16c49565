// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	return apperr.Internal(err)
}

// RowReason turns a per-row write failure into a message that is safe to show
// to the uploader. Constraint violations name the constraint; anything else is
// reported generically.
func RowReason(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "Database error"
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Sprintf("Duplicate record violates unique constraint %q", pgErr.ConstraintName)
	case pgerrcode.CheckViolation:
		return fmt.Sprintf("Value violates check constraint %q", pgErr.ConstraintName)
	case pgerrcode.NotNullViolation:
		return fmt.Sprintf("Missing value for column %q", pgErr.ColumnName)
	case pgerrcode.StringDataRightTruncationDataException:
		return "Value too long for column"
	case pgerrcode.InvalidTextRepresentation, pgerrcode.CharacterNotInRepertoire, pgerrcode.UntranslatableCharacter:
		return "Value has an invalid format"
	default:
		return "Database error"
	}
}

// IsRowLevel reports whether err is a data or integrity error scoped to a
// single row, as opposed to a connection or transaction-level failure that
// would affect every row of a batch.
func IsRowLevel(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) || pgerrcode.IsDataException(pgErr.Code)
}
