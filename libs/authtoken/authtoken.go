package authtoken

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/rotkonetworks/kagome/api/rpc/perms"
)

// ErrTokenExpired is returned for tokens whose expiry lies in the past.
var ErrTokenExpired = errors.New("authtoken: token expired")

// ExtractSignedPermissions verifies the token against the verifier and
// reports the permissions it grants. An expired token fails with
// ErrTokenExpired no matter who signed it.
func ExtractSignedPermissions(verifier jwt.Verifier, token string) ([]auth.Permission, error) {
	tk, err := jwt.Parse([]byte(token), verifier)
	if err != nil {
		return nil, err
	}

	p := new(perms.JWTPayload)
	if err := json.Unmarshal(tk.Claims(), p); err != nil {
		return nil, err
	}
	if !p.ExpiresAt.IsZero() && p.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrTokenExpired
	}
	return p.Allow, nil
}

// NewSignedJWT issues a token granting the given permissions. A zero ttl
// issues a token that never expires.
func NewSignedJWT(signer jwt.Signer, permissions []auth.Permission, ttl time.Duration) (string, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	p := &perms.JWTPayload{
		Allow: permissions,
		Nonce: nonce[:],
	}
	if ttl != 0 {
		p.ExpiresAt = time.Now().UTC().Add(ttl)
	}
	token, err := jwt.NewBuilder(signer).Build(p)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}
