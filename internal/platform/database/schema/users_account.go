package schema

// UsersAccountTable represents the 'users.account' table
type UsersAccountTable struct {
	Table                    string
	ID                       string
	Email                    string
	PhoneNumber              string
	HashedPassword           string
	PasswordSalt             string
	Roles                    string
	EmailConfirmed           string
	PhoneConfirmed           string
	IsSuspended              string
	LoginFailedCount         string
	LockOutEnabled           string
	LockOutOn                string
	LockOutCount             string
	EmailToken               string
	EmailTokenIssuedAt       string
	PhoneToken               string
	PhoneTokenIssuedAt       string
	RecoveryToken            string
	RecoveryIssuedAt         string
	OneTimePassword          string
	OneTimeIssuedAt          string
	SecretCode               string
	SecretCodeIssuedAt       string
	TwoFactorEnabled         string
	TwoFactorSecretKey       string
	TwoFactorManualEntryKey  string
	TwoFactorVerifyingTokens string
	TwoFactorTokensIssuedAt  string
	Version                  string
	CreatedAt                string
	UpdatedAt                string
	DeletedAt                string
}

// UsersAccount is the schema definition for users.account
var UsersAccount = UsersAccountTable{
	Table:                    "users.account",
	ID:                       "id",
	Email:                    "email",
	PhoneNumber:              "phonenumber",
	HashedPassword:           "hashedpassword",
	PasswordSalt:             "passwordsalt",
	Roles:                    "roles",
	EmailConfirmed:           "emailconfirmed",
	PhoneConfirmed:           "phoneconfirmed",
	IsSuspended:              "issuspended",
	LoginFailedCount:         "loginfailedcount",
	LockOutEnabled:           "lockoutenabled",
	LockOutOn:                "lockouton",
	LockOutCount:             "lockoutcount",
	EmailToken:               "emailtoken",
	EmailTokenIssuedAt:       "emailtokenissuedat",
	PhoneToken:               "phonetoken",
	PhoneTokenIssuedAt:       "phonetokenissuedat",
	RecoveryToken:            "recoverytoken",
	RecoveryIssuedAt:         "recoveryissuedat",
	OneTimePassword:          "onetimepassword",
	OneTimeIssuedAt:          "onetimeissuedat",
	SecretCode:               "secretcode",
	SecretCodeIssuedAt:       "secretcodeissuedat",
	TwoFactorEnabled:         "twofactorenabled",
	TwoFactorSecretKey:       "twofactorsecretkey",
	TwoFactorManualEntryKey:  "twofactormanualentrykey",
	TwoFactorVerifyingTokens: "twofactorverifyingtokens",
	TwoFactorTokensIssuedAt:  "twofactortokensissuedat",
	Version:                  "version",
	CreatedAt:                "createdat",
	UpdatedAt:                "updatedat",
	DeletedAt:                "deletedat",
}

// Columns returns the column names every account query reads and writes, in
// canonical scan order. DeletedAt is excluded; it only appears in filters.
func (t UsersAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PhoneNumber, t.HashedPassword, t.PasswordSalt, t.Roles,
		t.EmailConfirmed, t.PhoneConfirmed, t.IsSuspended,
		t.LoginFailedCount, t.LockOutEnabled, t.LockOutOn, t.LockOutCount,
		t.EmailToken, t.EmailTokenIssuedAt, t.PhoneToken, t.PhoneTokenIssuedAt,
		t.RecoveryToken, t.RecoveryIssuedAt, t.OneTimePassword, t.OneTimeIssuedAt,
		t.SecretCode, t.SecretCodeIssuedAt,
		t.TwoFactorEnabled, t.TwoFactorSecretKey, t.TwoFactorManualEntryKey,
		t.TwoFactorVerifyingTokens, t.TwoFactorTokensIssuedAt,
		t.Version, t.CreatedAt, t.UpdatedAt,
	}
}
