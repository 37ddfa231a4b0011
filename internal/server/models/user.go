// Package models defines server-side data models persisted in the database.
package models

// User is a directory account. Active and Deleted are always explicit;
// soft deletion sets Deleted instead of removing the row.
type User struct {
	ID       string
	RoleID   string
	Username string
	Active   bool
	Deleted  bool

	// Associations, populated only when the query joined them.
	Role    *Role
	Profile *Profile
	Gpgkey  *Gpgkey
}

// IsAdmin reports whether the joined role is the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role != nil && u.Role.Name == "admin"
}
