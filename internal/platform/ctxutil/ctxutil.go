// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/leminhduc/veriden/internal/platform/ctxkey"
	"github.com/leminhduc/veriden/internal/session"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthorization returns a new context carrying the session authorization
// record injected by the authenticated gate.
func WithAuthorization(ctx context.Context, record *session.Authorization) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuthorization, record)
}

// GetAuthorization retrieves the session authorization record, or nil when
// the request has not passed the authenticated gate.
func GetAuthorization(ctx context.Context) *session.Authorization {
	record, ok := ctx.Value(ctxkey.KeyAuthorization).(*session.Authorization)
	if !ok {
		return nil
	}
	return record
}

// WithSessionID returns a new context carrying the resolved session identifier.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeySessionID, sessionID)
}

// GetSessionID retrieves the session identifier, or an empty string.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(ctxkey.KeySessionID).(string)
	return sessionID
}
