package models

// Gpgkey is the public key material stored for a user. Fingerprint is the
// upper-case hex form used by authentication lookups.
type Gpgkey struct {
	ID          string
	UserID      string
	ArmoredKey  string
	Fingerprint string
	KeyID       string
}
