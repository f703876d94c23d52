// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/constants"
)

// RedisStore implements [Store] on Redis.
//
// # Key Layout
//
//   - authz:session:<sessionID>  holds the current Authorization (JSON blob)
//   - authz:preauth:<sessionID>  holds the transient pre-authorization
//   - authz:account:<accountID>  holds the set of session IDs holding records for the
//     account, used to invalidate all sessions on lockout/suspension.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed authorization store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// accountIndexTTL keeps the per-account session index alive slightly longer
// than any record it references, so invalidation never misses a live session.
const accountIndexTTL = 48 * time.Hour

/*
Save writes the current Authorization for a session.

Description: Replaces any previous record atomically and registers the session
in the account's invalidation index. The entry expires with the record's
validity window.

Parameters:
  - ctx: context.Context
  - sessionID: string
  - record: *Authorization

Returns:
  - error: Encoding or storage failures
*/
func (store *RedisStore) Save(ctx context.Context, sessionID string, record *Authorization) error {
	return store.save(ctx, constants.RedisPrefixAuthorization+sessionID, sessionID, record)
}

/*
Get retrieves the current Authorization for a session.

Description: Returns apperr.NotFound when the session holds no record or the
record has expired out of the store.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - *Authorization: Hydrated record
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, sessionID string) (*Authorization, error) {
	return store.get(ctx, constants.RedisPrefixAuthorization+sessionID)
}

/*
Delete removes the session's current Authorization.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixAuthorization+sessionID).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// SavePreAuthorization writes the transient pre-login record.
func (store *RedisStore) SavePreAuthorization(ctx context.Context, sessionID string, record *Authorization) error {
	return store.save(ctx, constants.RedisPrefixPreAuthorization+sessionID, sessionID, record)
}

// GetPreAuthorization retrieves the transient record, or apperr.NotFound.
func (store *RedisStore) GetPreAuthorization(ctx context.Context, sessionID string) (*Authorization, error) {
	return store.get(ctx, constants.RedisPrefixPreAuthorization+sessionID)
}

// DeletePreAuthorization discards the transient record.
func (store *RedisStore) DeletePreAuthorization(ctx context.Context, sessionID string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixPreAuthorization+sessionID).Err(); err != nil {
		return fmt.Errorf("redis_preauth_delete_failed: %w", err)
	}
	return nil
}

/*
InvalidateAccount removes every record held for an account across all sessions.

Description: Walks the account's session index and deletes both the full and
pre-authorization entries for each session, then drops the index itself.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - error: Connectivity failures
*/
func (store *RedisStore) InvalidateAccount(ctx context.Context, accountID string) error {
	indexKey := constants.RedisPrefixAccountSessions + accountID

	sessionIDs, err := store.client.SMembers(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis_account_index_read_failed: %w", err)
	}

	if len(sessionIDs) > 0 {
		keys := make([]string, 0, len(sessionIDs)*2)
		for _, sessionID := range sessionIDs {
			keys = append(keys,
				constants.RedisPrefixAuthorization+sessionID,
				constants.RedisPrefixPreAuthorization+sessionID,
			)
		}
		if err := store.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis_account_invalidate_failed: %w", err)
		}
	}

	if err := store.client.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("redis_account_index_delete_failed: %w", err)
	}

	return nil
}

// save encodes and stores a record under the given key with TTL = validity,
// and registers the session in the account index.
func (store *RedisStore) save(ctx context.Context, key, sessionID string, record *Authorization) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := store.client.Set(ctx, key, payload, record.Validity).Err(); err != nil {
		return fmt.Errorf("redis_session_save_failed: %w", err)
	}

	// Membership in the invalidation index outlives the record on purpose;
	// a stale member only costs a no-op delete later.
	indexKey := constants.RedisPrefixAccountSessions + record.AccountID
	if err := store.client.SAdd(ctx, indexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("redis_account_index_add_failed: %w", err)
	}
	if err := store.client.Expire(ctx, indexKey, accountIndexTTL).Err(); err != nil {
		return fmt.Errorf("redis_account_index_expire_failed: %w", err)
	}

	return nil
}

// get loads and decodes a record, mapping absence to apperr.NotFound.
func (store *RedisStore) get(ctx context.Context, key string) (*Authorization, error) {
	payload, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session authorization")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	record := &Authorization{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	return record, nil
}
