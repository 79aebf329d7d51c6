package model

// Role is the back-office role of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User is the identity snapshot cached in the session.
// It drives UI decisions only; the upstream API stays authoritative for permissions.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// TokenPair is what the token endpoints return.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// LoginResponse is the payload of the token issuance endpoint.
type LoginResponse struct {
	TokenPair
	User *User `json:"user,omitempty"`
}
