// Package gpgkeys stores the OpenPGP public keys users authenticate with.
package gpgkeys

import (
	"context"

	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

type Repository interface {
	// Create stores key, generating its id when empty.
	Create(ctx context.Context, key *models.Gpgkey) error

	// Conflicts reports whether userID already holds a key and whether
	// fingerprint is already registered to anyone.
	Conflicts(ctx context.Context, userID, fingerprint string) (userHasKey bool, fingerprintTaken bool, err error)
}
