package authtoken

import (
	"testing"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/api/rpc/perms"
)

func testKeys(t *testing.T) (jwt.Signer, jwt.Verifier) {
	t.Helper()
	key := make([]byte, 32)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	require.NoError(t, err)
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	require.NoError(t, err)
	return signer, verifier
}

func TestSignAndExtractPermissions(t *testing.T) {
	signer, verifier := testKeys(t)

	token, err := NewSignedJWT(signer, perms.ReadWritePerms, 0)
	require.NoError(t, err)

	got, err := ExtractSignedPermissions(verifier, token)
	require.NoError(t, err)
	assert.Equal(t, perms.ReadWritePerms, got)
}

func TestExpiredToken(t *testing.T) {
	signer, verifier := testKeys(t)

	token, err := NewSignedJWT(signer, perms.AllPerms, -time.Minute)
	require.NoError(t, err)

	_, err = ExtractSignedPermissions(verifier, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	signer, _ := testKeys(t)
	verifier, err := jwt.NewVerifierHS(jwt.HS256, []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	token, err := NewSignedJWT(signer, perms.ReadPerms, 0)
	require.NoError(t, err)

	_, err = ExtractSignedPermissions(verifier, token)
	assert.Error(t, err)
}

func TestNoPermissions(t *testing.T) {
	signer, verifier := testKeys(t)

	token, err := jwt.NewBuilder(signer).Build(map[string]string{"message": "no perms here"})
	require.NoError(t, err)

	got, err := ExtractSignedPermissions(verifier, token.String())
	require.NoError(t, err)
	assert.Equal(t, []auth.Permission(nil), got)
}

func TestMalformedToken(t *testing.T) {
	_, verifier := testKeys(t)

	_, err := ExtractSignedPermissions(verifier, "not.a.token")
	assert.Error(t, err)
}
