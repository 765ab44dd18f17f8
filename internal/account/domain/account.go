package domain

// Role tags an account as admin or customer. Both roles share the
// same account shape.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole maps a serialized role name back to a Role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleCustomer):
		return RoleCustomer, true
	}
	return "", false
}

// Account is a registered user, keyed by email.
type Account struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Address      string
	Phone        int64
	Role         Role
}
