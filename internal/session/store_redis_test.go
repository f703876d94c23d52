// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/session"
)

// newTestStore spins up an in-memory Redis and returns a store bound to it.
func newTestStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore(client), mr
}

func testRecord(accountID string) *session.Authorization {
	confirmed := false
	return &session.Authorization{
		AccountID:          accountID,
		Roles:              []sec.Role{sec.RoleCustomer},
		BearerToken:        "bearer-token",
		AuthorizationToken: "auth-token",
		RefreshToken:       "refresh-token",
		AuthorizedAt:       time.Now().Truncate(time.Millisecond),
		Validity:           30 * time.Minute,
		TwoFactorConfirmed: &confirmed,
	}
}

/*
TestRedisStore_SaveGetRoundTrip verifies a record survives storage intact.
*/
func TestRedisStore_SaveGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record := testRecord("acct-1")
	require.NoError(t, store.Save(ctx, "sess-1", record))

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, record.AccountID, loaded.AccountID)
	assert.Equal(t, record.Roles, loaded.Roles)
	assert.Equal(t, record.BearerToken, loaded.BearerToken)
	assert.Equal(t, record.AuthorizationToken, loaded.AuthorizationToken)
	require.NotNil(t, loaded.TwoFactorConfirmed)
	assert.False(t, *loaded.TwoFactorConfirmed)
	assert.False(t, loaded.IsPreAuthorization)
}

/*
TestRedisStore_GetMissing verifies absent sessions map to apperr.NotFound.
*/
func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-session")
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestRedisStore_RecordExpiresWithValidity verifies the TTL tracks the record validity.
*/
func TestRedisStore_RecordExpiresWithValidity(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	record := testRecord("acct-1")
	record.Validity = 1 * time.Minute
	require.NoError(t, store.Save(ctx, "sess-1", record))

	// Advance the virtual clock past the validity window.
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sess-1")
	assert.True(t, apperr.IsAppError(err))
}

/*
TestRedisStore_PreAuthorizationIsSeparate verifies pre and full records do not collide.
*/
func TestRedisStore_PreAuthorizationIsSeparate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	pre := testRecord("acct-1")
	pre.IsPreAuthorization = true
	require.NoError(t, store.SavePreAuthorization(ctx, "sess-1", pre))

	// The full slot stays empty.
	_, err := store.Get(ctx, "sess-1")
	assert.True(t, apperr.IsAppError(err))

	loaded, err := store.GetPreAuthorization(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsPreAuthorization)

	require.NoError(t, store.DeletePreAuthorization(ctx, "sess-1"))
	_, err = store.GetPreAuthorization(ctx, "sess-1")
	assert.True(t, apperr.IsAppError(err))
}

/*
TestRedisStore_InvalidateAccount verifies every session of an account is purged.
*/
func TestRedisStore_InvalidateAccount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", testRecord("acct-1")))
	require.NoError(t, store.Save(ctx, "sess-2", testRecord("acct-1")))
	require.NoError(t, store.Save(ctx, "sess-3", testRecord("acct-2")))

	require.NoError(t, store.InvalidateAccount(ctx, "acct-1"))

	_, err := store.Get(ctx, "sess-1")
	assert.True(t, apperr.IsAppError(err))
	_, err = store.Get(ctx, "sess-2")
	assert.True(t, apperr.IsAppError(err))

	// Other accounts are untouched.
	_, err = store.Get(ctx, "sess-3")
	assert.NoError(t, err)
}
