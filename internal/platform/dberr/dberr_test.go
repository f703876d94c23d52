// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, dberr.Wrap(nil, "Account"))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		err := dberr.Wrap(fmt.Errorf("query: %w", pgx.ErrNoRows), "Account")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
		assert.Equal(t, "Account not found", appErr.Message)
	})

	t.Run("unique violation becomes conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		err := dberr.Wrap(fmt.Errorf("insert: %w", pgErr), "Account")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
		assert.Equal(t, "Account already exists", appErr.Message)
	})

	t.Run("anything else becomes internal", func(t *testing.T) {
		err := dberr.Wrap(errors.New("connection refused"), "Account")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("plain")))
}
