package domain

// User is the authenticated identity returned by the auth service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user belongs to the admin dashboard, which the
// markets view refuses.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Session is a logged-in user plus the bearer token attached to
// auth-scoped backend calls.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
