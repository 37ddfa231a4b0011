package credentials

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

func newEntity(t *testing.T, email string) *openpgp.Entity {
	t.Helper()
	e, err := openpgp.NewEntity("Test", "", email, &packet.Config{RSABits: 1024})
	require.NoError(t, err)
	return e
}

func armorPublic(t *testing.T, entities ...*openpgp.Entity) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	for _, e := range entities {
		require.NoError(t, e.Serialize(w))
	}
	require.NoError(t, w.Close())
	return buf.String()
}

func armorPrivate(t *testing.T, e *openpgp.Entity) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, e.SerializePrivate(w, nil))
	require.NoError(t, w.Close())
	return buf.String()
}

func TestParse_PublicKey(t *testing.T) {
	e := newEntity(t, "ada@example.com")
	armored := armorPublic(t, e)

	key, err := Parse(armored)
	require.NoError(t, err)
	assert.Len(t, key.Fingerprint, 40)
	assert.Equal(t, Fingerprint(e), key.Fingerprint)
	assert.Regexp(t, `^[0-9A-F]{40}$`, key.Fingerprint)
	assert.Equal(t, key.Fingerprint[24:], key.KeyID, "v4 key id is the fingerprint tail")
	assert.Equal(t, armored, key.ArmoredKey)
	assert.Empty(t, key.UserID)
}

func TestParse_Rejects(t *testing.T) {
	a := newEntity(t, "a@example.com")
	b := newEntity(t, "b@example.com")

	cases := map[string]string{
		"empty":       "  ",
		"garbage":     "not a key",
		"two keys":    armorPublic(t, a, b),
		"private key": armorPrivate(t, a),
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, []string{FieldArmoredKey}, ve.Fields())
			assert.ErrorIs(t, err, common.ErrorInvalid)
		})
	}
}
