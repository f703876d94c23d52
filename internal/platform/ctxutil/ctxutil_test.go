// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/session"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Authorization verifies that session authorization records can be
stored in context.
*/
func TestContext_Authorization(t *testing.T) {
	ctx := context.Background()
	record := &session.Authorization{
		AccountID: "account-123",
		Roles:     []sec.Role{sec.RoleAdministrator},
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetAuthorization(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithAuthorization(ctx, record)
	retrieved := ctxutil.GetAuthorization(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "account-123", retrieved.AccountID)
	assert.Equal(t, []sec.Role{sec.RoleAdministrator}, retrieved.Roles)
}

/*
TestContext_SessionID verifies that session identifiers round-trip through context.
*/
func TestContext_SessionID(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetSessionID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSessionID(ctx, "session-abc")
	assert.Equal(t, "session-abc", ctxutil.GetSessionID(ctx))
}
