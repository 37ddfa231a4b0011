package models

import "time"

// AuthenticationToken is a one-time token issued to a user, e.g. during
// account recovery. Issuing a new token deactivates the previous ones.
type AuthenticationToken struct {
	ID      string
	UserID  string
	Token   string
	Active  bool
	Expires time.Time
}

