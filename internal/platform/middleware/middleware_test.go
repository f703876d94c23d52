// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/middleware"
	"github.com/leminhduc/veriden/internal/session"
)

// # Log Capture

type capturedRecord struct {
	message string
	attrs   map[string]slog.Value
}

// recordSink collects every emitted record with its merged attributes.
type recordSink struct {
	mu      sync.Mutex
	records []capturedRecord
}

func (sink *recordSink) find(t *testing.T, message string) capturedRecord {
	t.Helper()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, record := range sink.records {
		if record.message == message {
			return record
		}
	}
	t.Fatalf("no log record with message %q", message)
	return capturedRecord{}
}

// captureHandler is a slog.Handler that stores records in a shared sink.
type captureHandler struct {
	sink  *recordSink
	attrs []slog.Attr
}

func (handler *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (handler *captureHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := map[string]slog.Value{}
	for _, attr := range handler.attrs {
		attrs[attr.Key] = attr.Value
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value
		return true
	})

	handler.sink.mu.Lock()
	defer handler.sink.mu.Unlock()
	handler.sink.records = append(handler.sink.records,
		capturedRecord{message: record.Message, attrs: attrs})
	return nil
}

func (handler *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, handler.attrs...), attrs...)
	return &captureHandler{sink: handler.sink, attrs: merged}
}

func (handler *captureHandler) WithGroup(string) slog.Handler { return handler }

// # Structured Logger

/*
TestStructuredLogger_FinishEntry verifies the access log carries the
response status and latency, and that context values injected by downstream
middleware never surface in it: the downstream chain derives child contexts
the logger's deferred entry cannot observe.
*/
func TestStructuredLogger_FinishEntry(t *testing.T) {
	sink := &recordSink{}
	logger := slog.New(&captureHandler{sink: sink})

	// injectAuthorization stands in for the authentication gate, which runs
	// after the global chain and scopes the record to its own subtree.
	injectAuthorization := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithAuthorization(request.Context(),
				&session.Authorization{AccountID: "acct-1"})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}

	handler := middleware.StructuredLogger(logger)(
		injectAuthorization(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		})),
	)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	handler.ServeHTTP(httptest.NewRecorder(), request)

	finish := sink.find(t, "http_request_finished")

	status, ok := finish.attrs["status"]
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusNoContent), status.Int64())
	assert.Contains(t, finish.attrs, "latency_ms")

	_, leaked := finish.attrs["account_id"]
	assert.False(t, leaked)
}
