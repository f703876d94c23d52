// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leminhduc/veriden/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The resource name flows into the client-facing message ("Account not found",
// "Account already exists").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Constraint mapping via SQLSTATE
	if IsUniqueViolation(err) {
		return apperr.Conflict(resource + " already exists")
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether the error is a unique-constraint breach.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
