package schema

// UsersProfileTable represents the 'users.profile' table
type UsersProfileTable struct {
	Table       string
	ID          string
	AccountID   string
	DisplayName string
	Email       string
	PhoneNumber string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UsersProfile is the schema definition for users.profile
var UsersProfile = UsersProfileTable{
	Table:       "users.profile",
	ID:          "id",
	AccountID:   "accountid",
	DisplayName: "displayname",
	Email:       "email",
	PhoneNumber: "phonenumber",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns the column names in canonical scan order, excluding the
// soft-delete marker.
func (t UsersProfileTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.DisplayName, t.Email, t.PhoneNumber,
		t.CreatedAt, t.UpdatedAt,
	}
}
