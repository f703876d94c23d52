// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/database/schema"
	"github.com/leminhduc/veriden/internal/platform/dberr"
	"github.com/leminhduc/veriden/internal/platform/sec"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
//
// # Error Mapping
//
// pgx.ErrNoRows maps to [apperr.NotFound]; a unique-constraint breach on
// insert maps to [apperr.Conflict] via [dberr.Wrap]; a versioned update that
// matches no row maps to [ErrVersionConflict]. Other storage errors are
// wrapped and surface as 500s.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates the PostgreSQL account repository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// accountColumns is the canonical column list shared by every account query,
// derived once from the schema definition.
var accountColumns = strings.Join(schema.UsersAccount.Columns(), ", ")

// scanAccount hydrates one account row in accountColumns order.
func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	var roles []string

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PhoneNumber,
		&account.HashedPassword,
		&account.PasswordSalt,
		&roles,
		&account.EmailConfirmed,
		&account.PhoneConfirmed,
		&account.IsSuspended,
		&account.LoginFailedCount,
		&account.LockOutEnabled,
		&account.LockOutOn,
		&account.LockOutCount,
		&account.EmailToken,
		&account.EmailTokenIssuedAt,
		&account.PhoneToken,
		&account.PhoneTokenIssuedAt,
		&account.RecoveryToken,
		&account.RecoveryIssuedAt,
		&account.OneTimePassword,
		&account.OneTimeIssuedAt,
		&account.SecretCode,
		&account.SecretCodeIssuedAt,
		&account.TwoFactorEnabled,
		&account.TwoFactorSecretKey,
		&account.TwoFactorManualEntryKey,
		&account.TwoFactorVerifyingTokens,
		&account.TwoFactorTokensIssuedAt,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Roles = sec.RolesFromStrings(roles)
	return account, nil
}

/*
Create persists a new account record into the users.account table.

Description: Writes the full credential aggregate with zero/false lockout
defaults and version 0.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Constraint violations or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31
		)`,
		schema.UsersAccount.Table, accountColumns)

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.PhoneNumber,
		account.HashedPassword,
		account.PasswordSalt,
		sec.RolesToStrings(account.Roles),
		account.EmailConfirmed,
		account.PhoneConfirmed,
		account.IsSuspended,
		account.LoginFailedCount,
		account.LockOutEnabled,
		account.LockOutOn,
		account.LockOutCount,
		account.EmailToken,
		account.EmailTokenIssuedAt,
		account.PhoneToken,
		account.PhoneTokenIssuedAt,
		account.RecoveryToken,
		account.RecoveryIssuedAt,
		account.OneTimePassword,
		account.OneTimeIssuedAt,
		account.SecretCode,
		account.SecretCodeIssuedAt,
		account.TwoFactorEnabled,
		account.TwoFactorSecretKey,
		account.TwoFactorManualEntryKey,
		account.TwoFactorVerifyingTokens,
		account.TwoFactorTokensIssuedAt,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "Account")
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a credential record by primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated credential aggregate
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns, schema.UsersAccount.Table,
		schema.UsersAccount.ID, schema.UsersAccount.DeletedAt)

	account, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
FindByEmail retrieves a credential record by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated credential aggregate
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns, schema.UsersAccount.Table,
		schema.UsersAccount.Email, schema.UsersAccount.DeletedAt)

	account, err := scanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_email_failed: %w", err)
	}

	return account, nil
}

/*
FindByPhoneNumber retrieves a credential record by its phone number.

Parameters:
  - context: context.Context
  - phoneNumber: string (canonical "+region-subscriber" form)

Returns:
  - *Account: Hydrated credential aggregate
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByPhoneNumber(context context.Context, phoneNumber string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns, schema.UsersAccount.Table,
		schema.UsersAccount.PhoneNumber, schema.UsersAccount.DeletedAt)

	account, err := scanAccount(repository.pool.QueryRow(context, query, phoneNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_phone_failed: %w", err)
	}

	return account, nil
}

/*
Update persists the credential aggregate under optimistic concurrency.

Description: The row is matched on id AND the caller's version; on success
the stored version is incremented and mirrored back onto the entity. A
version mismatch (concurrent writer won) yields [ErrVersionConflict].

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrVersionConflict or execution errors
*/
func (repository *PostgresAccountRepository) Update(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			email = $3, phonenumber = $4, hashedpassword = $5, passwordsalt = $6,
			roles = $7, emailconfirmed = $8, phoneconfirmed = $9, issuspended = $10,
			loginfailedcount = $11, lockoutenabled = $12, lockouton = $13, lockoutcount = $14,
			emailtoken = $15, emailtokenissuedat = $16, phonetoken = $17, phonetokenissuedat = $18,
			recoverytoken = $19, recoveryissuedat = $20, onetimepassword = $21, onetimeissuedat = $22,
			secretcode = $23, secretcodeissuedat = $24,
			twofactorenabled = $25, twofactorsecretkey = $26, twofactormanualentrykey = $27,
			twofactorverifyingtokens = $28, twofactortokensissuedat = $29,
			version = version + 1, updatedat = $30
		WHERE id = $1 AND version = $2 AND deletedat IS NULL`,
		schema.UsersAccount.Table)

	account.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		account.ID,
		account.Version,
		account.Email,
		account.PhoneNumber,
		account.HashedPassword,
		account.PasswordSalt,
		sec.RolesToStrings(account.Roles),
		account.EmailConfirmed,
		account.PhoneConfirmed,
		account.IsSuspended,
		account.LoginFailedCount,
		account.LockOutEnabled,
		account.LockOutOn,
		account.LockOutCount,
		account.EmailToken,
		account.EmailTokenIssuedAt,
		account.PhoneToken,
		account.PhoneTokenIssuedAt,
		account.RecoveryToken,
		account.RecoveryIssuedAt,
		account.OneTimePassword,
		account.OneTimeIssuedAt,
		account.SecretCode,
		account.SecretCodeIssuedAt,
		account.TwoFactorEnabled,
		account.TwoFactorSecretKey,
		account.TwoFactorManualEntryKey,
		account.TwoFactorVerifyingTokens,
		account.TwoFactorTokensIssuedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	account.Version++
	return nil
}

// # Profile Repository

// PostgresProfileRepository implements [ProfileRepository] using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// profileColumns is the canonical column list shared by every profile query.
var profileColumns = strings.Join(schema.UsersProfile.Columns(), ", ")

// NewProfileRepository creates the PostgreSQL profile repository.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

/*
Create persists a new profile record into the users.profile table.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Constraint violations or connectivity errors
*/
func (repository *PostgresProfileRepository) Create(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UsersProfile.Table, profileColumns)

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.AccountID,
		profile.DisplayName,
		profile.Email,
		profile.PhoneNumber,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "Profile")
		}
		return fmt.Errorf("postgres_profile_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a profile record by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		profileColumns, schema.UsersProfile.Table,
		schema.UsersProfile.ID, schema.UsersProfile.DeletedAt)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.DisplayName,
		&profile.Email,
		&profile.PhoneNumber,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_by_id_failed: %w", err)
	}

	return profile, nil
}

/*
FindByAccountID retrieves the profile owned by an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByAccountID(context context.Context, accountID string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		profileColumns, schema.UsersProfile.Table,
		schema.UsersProfile.AccountID, schema.UsersProfile.DeletedAt)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, accountID).Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.DisplayName,
		&profile.Email,
		&profile.PhoneNumber,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_by_account_failed: %w", err)
	}

	return profile, nil
}

/*
Update persists changes to a profile's mutable fields.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Update failures
*/
func (repository *PostgresProfileRepository) Update(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET displayname = $2, email = $3, phonenumber = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`,
		schema.UsersProfile.Table)

	profile.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.DisplayName,
		profile.Email,
		profile.PhoneNumber,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_failed: %w", err)
	}

	return nil
}

/*
BelongsTo reports whether a profile is owned by an account.

Description: Existence probe feeding the account/profile association gate.

Parameters:
  - context: context.Context
  - profileID: string
  - accountID: string

Returns:
  - bool: Definitive ownership verdict
  - error: Execution errors (the gate maps these to InternalServerError)
*/
func (repository *PostgresProfileRepository) BelongsTo(context context.Context, profileID, accountID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE id = $1 AND accountid = $2 AND deletedat IS NULL
		)`,
		schema.UsersProfile.Table)

	var owned bool
	if err := repository.pool.QueryRow(context, query, profileID, accountID).Scan(&owned); err != nil {
		return false, fmt.Errorf("postgres_profile_repo_belongs_to_failed: %w", err)
	}

	return owned, nil
}
