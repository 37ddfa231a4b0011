// Package credentials turns uploaded OpenPGP public keys into the Gpgkey rows
// that authentication lookups match on.
package credentials

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"golang.org/x/crypto/openpgp"
)

const (
	FieldArmoredKey = "armored_key"
	RuleValidKey    = "validGpgkey"
)

func invalid(msg string) error {
	return &common.ValidationError{
		Context: "credential",
		Violations: []common.Violation{{
			Field:   FieldArmoredKey,
			Rule:    RuleValidKey,
			Message: msg,
		}},
	}
}

// Parse reads exactly one armored public key and returns the Gpgkey it
// describes, without UserID or ID. The fingerprint is upper-case hex.
func Parse(armored string) (*models.Gpgkey, error) {
	if strings.TrimSpace(armored) == "" {
		return nil, invalid("A public key is required.")
	}

	ring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if err != nil {
		return nil, invalid(fmt.Sprintf("The key could not be parsed: %v.", err))
	}
	if len(ring) != 1 {
		return nil, invalid("Exactly one public key is expected.")
	}

	entity := ring[0]
	if entity.PrivateKey != nil {
		return nil, invalid("A private key cannot be used as a credential.")
	}

	return &models.Gpgkey{
		ArmoredKey:  armored,
		Fingerprint: Fingerprint(entity),
		KeyID:       fmt.Sprintf("%016X", entity.PrimaryKey.KeyId),
	}, nil
}

// Fingerprint formats the primary key fingerprint of e.
func Fingerprint(e *openpgp.Entity) string {
	return strings.ToUpper(hex.EncodeToString(e.PrimaryKey.Fingerprint[:]))
}
