// Package perms defines the permission levels understood by the RPC layer
// and the payload carried inside auth tokens.
package perms

import (
	"encoding/json"
	"time"

	"github.com/filecoin-project/go-jsonrpc/auth"
)

// The permission ladder for RPC access. Each level contains the ones before
// it, a token carrying "admin" passes every check.
var (
	DefaultPerms   = []auth.Permission{"public"}
	ReadPerms      = []auth.Permission{"public", "read"}
	ReadWritePerms = []auth.Permission{"public", "read", "write"}
	AllPerms       = []auth.Permission{"public", "read", "write", "admin"}
)

// AuthKey is the HTTP header the token travels in.
var AuthKey = "Authorization"

// JWTPayload carries the permissions a token grants. Signing and
// verification live in libs/authtoken.
type JWTPayload struct {
	Allow     []auth.Permission
	Nonce     []byte
	ExpiresAt time.Time
}

func (j *JWTPayload) MarshalBinary() (data []byte, err error) {
	return json.Marshal(j)
}
