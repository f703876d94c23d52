// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/session"
)

// # Lockout States

// LockoutState labels where an account sits in the lockout state machine.
type LockoutState string

const (
	// StateActive means the account can attempt to authenticate.
	StateActive LockoutState = "active"
	// StateLockedOut means the account is inside a temporary lockout window.
	StateLockedOut LockoutState = "locked_out"
	// StateSuspended is terminal until an out-of-band administrative reset.
	StateSuspended LockoutState = "suspended"
)

// AttemptOutcome is the typed result of processing one authentication
// attempt. It carries the current counters so the caller can render
// "N attempts remaining" or "locked until T" without a second read.
type AttemptOutcome struct {
	State             LockoutState
	AttemptsRemaining int
	LockedUntil       *time.Time
	LockOutCount      int
	Suspended         bool
}

// Blocked reports whether the attempt must be refused regardless of the
// submitted credential.
func (outcome *AttemptOutcome) Blocked() bool {
	return outcome.State != StateActive
}

// # Guard

// LockoutGuard is the failed-login / lockout / suspension state machine.
//
// Every authentication path (password login, OTP login) routes its failure
// and success through the same guard so the two flows cannot diverge in
// counting. Counter mutations use optimistic versioned updates with bounded
// retry; two near-simultaneous failures both land, in some order.
type LockoutGuard struct {
	accounts AccountRepository
	sessions session.Store

	loginFailedThreshold int
	lockOutThreshold     int
	lockOutDuration      time.Duration
}

// NewLockoutGuard constructs a guard with its thresholds.
func NewLockoutGuard(
	accounts AccountRepository,
	sessions session.Store,
	loginFailedThreshold, lockOutThreshold int,
	lockOutDuration time.Duration,
) *LockoutGuard {
	return &LockoutGuard{
		accounts:             accounts,
		sessions:             sessions,
		loginFailedThreshold: loginFailedThreshold,
		lockOutThreshold:     lockOutThreshold,
		lockOutDuration:      lockOutDuration,
	}
}

// # State Inspection

// Evaluate reads the account's current lockout state without mutating it.
//
// A lockout is only active while now <= lockOutOn + lockOutDuration. Once
// the window has elapsed a subsequent attempt is evaluated as if unlocked,
// but the counters keep their last values; only a successful login resets
// them.
func (guard *LockoutGuard) Evaluate(account *Account, now time.Time) *AttemptOutcome {
	outcome := &AttemptOutcome{
		State:             StateActive,
		AttemptsRemaining: guard.attemptsRemaining(account),
		LockOutCount:      account.LockOutCount,
	}

	if account.IsSuspended {
		outcome.State = StateSuspended
		outcome.Suspended = true
		outcome.AttemptsRemaining = 0
		return outcome
	}

	if account.LockOutEnabled && account.LockOutOn != nil {
		until := account.LockOutOn.Add(guard.lockOutDuration)
		if !now.After(until) {
			outcome.State = StateLockedOut
			outcome.LockedUntil = &until
			outcome.AttemptsRemaining = 0
		}
	}

	return outcome
}

func (guard *LockoutGuard) attemptsRemaining(account *Account) int {
	remaining := guard.loginFailedThreshold - account.LoginFailedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// # Transitions

// applyFailure mutates the account for one failed credential check and
// reports whether a lockout or suspension was newly entered.
func (guard *LockoutGuard) applyFailure(account *Account, now time.Time) bool {
	account.LoginFailedCount++

	if account.LoginFailedCount < guard.loginFailedThreshold {
		// Below the threshold a stale lockout flag from an elapsed window
		// is cleared; the failure counter alone carries the history.
		account.LockOutEnabled = false
		account.LockOutOn = nil
		return false
	}

	account.LockOutEnabled = true
	account.LockOutOn = &now
	account.LockOutCount++

	if account.LockOutCount < guard.lockOutThreshold {
		// Temporary lockout: the failure counter restarts for the next
		// episode while LockOutCount remembers how many episodes happened.
		account.LoginFailedCount = 0
	} else {
		account.IsSuspended = true
	}

	return true
}

// applySuccess zeroes every counter. Suspension is terminal and is never
// cleared here.
func (guard *LockoutGuard) applySuccess(account *Account) {
	account.LoginFailedCount = 0
	account.LockOutEnabled = false
	account.LockOutOn = nil
	account.LockOutCount = 0
}

/*
RecordFailure processes one failed credential check.

Description: Applies the failure transition under an optimistic
compare-and-swap loop, invalidates the account's sessions when a lockout or
suspension is newly entered, and returns the resulting typed outcome.

Parameters:
  - ctx: context.Context
  - account: *Account (reloaded internally on version conflicts)

Returns:
  - *AttemptOutcome: Counters after the transition
  - error: Persistence failures after retries are exhausted
*/
func (guard *LockoutGuard) RecordFailure(ctx context.Context, account *Account) (*AttemptOutcome, error) {
	now := time.Now()
	var entered bool

	current := account
	for attempt := 0; ; attempt++ {
		entered = guard.applyFailure(current, now)

		err := guard.accounts.Update(ctx, current)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= lockoutUpdateRetries {
			return nil, fmt.Errorf("lockout_guard_record_failure: %w", err)
		}

		// Lost the race: reload and re-apply on the fresh counters.
		reloaded, loadErr := guard.accounts.FindByID(ctx, current.ID)
		if loadErr != nil {
			return nil, fmt.Errorf("lockout_guard_reload_failed: %w", loadErr)
		}
		current = reloaded
	}

	*account = *current

	if entered {
		logger := ctxutil.GetLogger(ctx)
		logger.WarnContext(ctx, "account_lockout_entered",
			"account_id", current.ID,
			"lockout_count", current.LockOutCount,
			"suspended", current.IsSuspended,
		)

		// Existing sessions must not outlive a fresh lockout.
		if err := guard.sessions.InvalidateAccount(ctx, current.ID); err != nil {
			logger.ErrorContext(ctx, "account_session_invalidation_failed",
				"account_id", current.ID, "error", err)
		}
	}

	return guard.outcomeAfterFailure(current, now), nil
}

// outcomeAfterFailure derives the typed outcome from the persisted state.
func (guard *LockoutGuard) outcomeAfterFailure(account *Account, now time.Time) *AttemptOutcome {
	outcome := guard.Evaluate(account, now)
	if outcome.State == StateActive {
		// The failed attempt itself already counted.
		outcome.AttemptsRemaining = guard.attemptsRemaining(account)
	}
	return outcome
}

/*
RecordSuccess processes one successful authentication.

Description: Resets every lockout counter to its baseline under the same
compare-and-swap discipline as RecordFailure. Suspended accounts never reach
this path; callers must check [LockoutGuard.Evaluate] first.

Parameters:
  - ctx: context.Context
  - account: *Account

Returns:
  - error: Persistence failures after retries are exhausted
*/
func (guard *LockoutGuard) RecordSuccess(ctx context.Context, account *Account) error {
	current := account
	for attempt := 0; ; attempt++ {
		guard.applySuccess(current)

		err := guard.accounts.Update(ctx, current)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= lockoutUpdateRetries {
			return fmt.Errorf("lockout_guard_record_success: %w", err)
		}

		reloaded, loadErr := guard.accounts.FindByID(ctx, current.ID)
		if loadErr != nil {
			return fmt.Errorf("lockout_guard_reload_failed: %w", loadErr)
		}
		current = reloaded
	}

	*account = *current
	return nil
}
