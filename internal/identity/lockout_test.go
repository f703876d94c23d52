// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/identity"
	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/session"
)

// # In-Memory Doubles

// memAccounts is an in-memory AccountRepository with real optimistic
// versioning, so the guard's compare-and-swap loop is exercised for real.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]identity.Account
}

func newMemAccounts(seed ...*identity.Account) *memAccounts {
	repo := &memAccounts{accounts: map[string]identity.Account{}}
	for _, account := range seed {
		repo.accounts[account.ID] = *account
	}
	return repo
}

func (m *memAccounts) Create(_ context.Context, account *identity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = *account
	return nil
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := account
	return &copied, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email {
			copied := account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memAccounts) FindByPhoneNumber(_ context.Context, phoneNumber string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.PhoneNumber == phoneNumber {
			copied := account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memAccounts) Update(_ context.Context, account *identity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[account.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	if stored.Version != account.Version {
		return identity.ErrVersionConflict
	}
	account.Version++
	m.accounts[account.ID] = *account
	return nil
}

// memSessions records invalidations; everything else is a no-op.
type memSessions struct {
	mu          sync.Mutex
	invalidated []string
}

func (m *memSessions) Save(context.Context, string, *session.Authorization) error { return nil }
func (m *memSessions) Get(context.Context, string) (*session.Authorization, error) {
	return nil, apperr.NotFound("Session authorization")
}
func (m *memSessions) Delete(context.Context, string) error { return nil }
func (m *memSessions) SavePreAuthorization(context.Context, string, *session.Authorization) error {
	return nil
}
func (m *memSessions) GetPreAuthorization(context.Context, string) (*session.Authorization, error) {
	return nil, apperr.NotFound("Session authorization")
}
func (m *memSessions) DeletePreAuthorization(context.Context, string) error { return nil }

func (m *memSessions) InvalidateAccount(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, accountID)
	return nil
}

func (m *memSessions) invalidations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invalidated)
}

// # Guard Tests

const (
	testFailedThreshold  = 5
	testLockOutThreshold = 3
	testLockOutDuration  = 15 * time.Minute
)

func newGuardFixture(t *testing.T) (*identity.LockoutGuard, *memAccounts, *memSessions, *identity.Account) {
	t.Helper()

	account := &identity.Account{ID: "acct-1", Email: "a@veriden.app"}
	accounts := newMemAccounts(account)
	sessions := &memSessions{}
	guard := identity.NewLockoutGuard(accounts, sessions,
		testFailedThreshold, testLockOutThreshold, testLockOutDuration)

	return guard, accounts, sessions, account
}

/*
TestLockoutGuard_ThresholdEntersLockout verifies that exactly
loginFailedThreshold consecutive failures flips the account into a lockout
with lockOutOn set and lockOutCount == 1.
*/
func TestLockoutGuard_ThresholdEntersLockout(t *testing.T) {
	guard, _, sessions, account := newGuardFixture(t)
	ctx := context.Background()

	var outcome *identity.AttemptOutcome
	var err error
	for i := 0; i < testFailedThreshold; i++ {
		outcome, err = guard.RecordFailure(ctx, account)
		require.NoError(t, err)
	}

	assert.Equal(t, identity.StateLockedOut, outcome.State)
	assert.Equal(t, 1, account.LockOutCount)
	assert.True(t, account.LockOutEnabled)
	require.NotNil(t, account.LockOutOn)
	assert.WithinDuration(t, time.Now(), *account.LockOutOn, 2*time.Second)
	require.NotNil(t, outcome.LockedUntil)

	// Entering the lockout kicked out existing sessions.
	assert.Equal(t, 1, sessions.invalidations())
}

/*
TestLockoutGuard_BelowThresholdStaysActive verifies the counter increments
without lockout until the threshold, and the outcome reports attempts left.
*/
func TestLockoutGuard_BelowThresholdStaysActive(t *testing.T) {
	guard, _, sessions, account := newGuardFixture(t)
	ctx := context.Background()

	outcome, err := guard.RecordFailure(ctx, account)
	require.NoError(t, err)

	assert.Equal(t, identity.StateActive, outcome.State)
	assert.Equal(t, testFailedThreshold-1, outcome.AttemptsRemaining)
	assert.False(t, account.LockOutEnabled)
	assert.Zero(t, sessions.invalidations())
}

/*
TestLockoutGuard_RepeatedLockoutsSuspend verifies that lockOutThreshold
distinct lockout episodes leave the account suspended, terminally.
*/
func TestLockoutGuard_RepeatedLockoutsSuspend(t *testing.T) {
	guard, _, _, account := newGuardFixture(t)
	ctx := context.Background()

	var outcome *identity.AttemptOutcome
	var err error
	for episode := 0; episode < testLockOutThreshold; episode++ {
		for i := 0; i < testFailedThreshold; i++ {
			outcome, err = guard.RecordFailure(ctx, account)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, identity.StateSuspended, outcome.State)
	assert.True(t, account.IsSuspended)
	assert.Equal(t, testLockOutThreshold, account.LockOutCount)

	// Suspension survives further attempts of either kind.
	outcome, err = guard.RecordFailure(ctx, account)
	require.NoError(t, err)
	assert.True(t, outcome.Suspended)
	assert.True(t, account.IsSuspended)
}

/*
TestLockoutGuard_SuccessResetsCounters verifies a successful authentication
returns every counter to its baseline.
*/
func TestLockoutGuard_SuccessResetsCounters(t *testing.T) {
	guard, _, _, account := newGuardFixture(t)
	ctx := context.Background()

	for i := 0; i < testFailedThreshold; i++ {
		_, err := guard.RecordFailure(ctx, account)
		require.NoError(t, err)
	}
	require.True(t, account.LockOutEnabled)

	require.NoError(t, guard.RecordSuccess(ctx, account))

	assert.Zero(t, account.LoginFailedCount)
	assert.Zero(t, account.LockOutCount)
	assert.False(t, account.LockOutEnabled)
	assert.Nil(t, account.LockOutOn)
}

/*
TestLockoutGuard_WindowElapseDoesNotResetCounters verifies that time alone
never resets the counters: after the lockout window passes the account can
attempt again, but the episode history is intact.
*/
func TestLockoutGuard_WindowElapseDoesNotResetCounters(t *testing.T) {
	guard, _, _, account := newGuardFixture(t)
	ctx := context.Background()

	for i := 0; i < testFailedThreshold; i++ {
		_, err := guard.RecordFailure(ctx, account)
		require.NoError(t, err)
	}
	require.Equal(t, 1, account.LockOutCount)

	// Inside the window the account is locked.
	locked := guard.Evaluate(account, time.Now())
	assert.Equal(t, identity.StateLockedOut, locked.State)

	// Past the window it evaluates as unlocked, counters untouched.
	later := account.LockOutOn.Add(testLockOutDuration + time.Second)
	unlocked := guard.Evaluate(account, later)
	assert.Equal(t, identity.StateActive, unlocked.State)
	assert.Equal(t, 1, account.LockOutCount)
}

/*
TestLockoutGuard_ConcurrentFailuresAllCount verifies the versioned update
closes the read-modify-write race: simultaneous failures never lose counts.
*/
func TestLockoutGuard_ConcurrentFailuresAllCount(t *testing.T) {
	guard, accounts, _, _ := newGuardFixture(t)
	ctx := context.Background()

	const attempts = 4
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each goroutine starts from its own snapshot, like two
			// requests hitting different replicas of the same row.
			snapshot, err := accounts.FindByID(ctx, "acct-1")
			assert.NoError(t, err)
			_, err = guard.RecordFailure(ctx, snapshot)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := accounts.FindByID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, attempts, final.LoginFailedCount)
}

/*
TestLockoutGuard_EvaluateSuspendedBlocks verifies evaluation of a suspended
account reports a blocked, zero-attempts outcome.
*/
func TestLockoutGuard_EvaluateSuspendedBlocks(t *testing.T) {
	guard, _, _, account := newGuardFixture(t)
	account.IsSuspended = true

	outcome := guard.Evaluate(account, time.Now())
	assert.True(t, outcome.Blocked())
	assert.True(t, outcome.Suspended)
	assert.Zero(t, outcome.AttemptsRemaining)
}
