// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"errors"
)

// ErrVersionConflict reports that an optimistic update lost the race: the
// account row changed between the read and the write. Callers reload the
// account and re-apply their transition.
var ErrVersionConflict = errors.New("account was modified concurrently")

// # Repository Contracts

// AccountRepository is the persistence contract for the credential aggregate.
//
// Update matches on the account's Version and increments it on success;
// a stale Version yields [ErrVersionConflict] instead of silently
// overwriting a concurrent writer.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*Account, error)
	Update(ctx context.Context, account *Account) error
}

// ProfileRepository is the persistence contract for account profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByAccountID(ctx context.Context, accountID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error

	// BelongsTo reports whether the profile is owned by the account.
	// Consumed by the account/profile association gate.
	BelongsTo(ctx context.Context, profileID, accountID string) (bool, error)
}
