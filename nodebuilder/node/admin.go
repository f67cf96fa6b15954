package node

import (
	"context"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/filecoin-project/go-jsonrpc/auth"
	logging "github.com/ipfs/go-log/v2"

	"github.com/rotkonetworks/kagome/libs/authtoken"
)

const APIVersion = "v0.1.0"

type module struct {
	tp       Type
	signer   jwt.Signer
	verifier jwt.Verifier
}

func newModule(tp Type, signer jwt.Signer, verifier jwt.Verifier) Module {
	return &module{
		tp:       tp,
		signer:   signer,
		verifier: verifier,
	}
}

// Info identifies the running node to API clients.
type Info struct {
	Type       Type   `json:"type"`
	APIVersion string `json:"api_version"`
}

// Version reports what the running binary was built from.
type Version struct {
	SemanticVersion string `json:"semantic_version"`
	LastCommit      string `json:"last_commit"`
	BuildTime       string `json:"build_time"`
	SystemVersion   string `json:"system_version"`
	GolangVersion   string `json:"golang_version"`
}

func (m *module) Info(context.Context) (Info, error) {
	return Info{
		Type:       m.tp,
		APIVersion: APIVersion,
	}, nil
}

func (m *module) Version(context.Context) (Version, error) {
	buildInfo := GetBuildInfo()
	return Version{
		SemanticVersion: buildInfo.SemanticVersion,
		LastCommit:      buildInfo.LastCommit,
		BuildTime:       buildInfo.BuildTime,
		SystemVersion:   buildInfo.SystemVersion,
		GolangVersion:   buildInfo.GolangVersion,
	}, nil
}

func (m *module) LogLevelSet(_ context.Context, name, level string) error {
	return logging.SetLogLevel(name, level)
}

func (m *module) AuthVerify(_ context.Context, token string) ([]auth.Permission, error) {
	return authtoken.ExtractSignedPermissions(m.verifier, token)
}

func (m *module) AuthNew(_ context.Context, permissions []auth.Permission) (string, error) {
	return authtoken.NewSignedJWT(m.signer, permissions, 0)
}

func (m *module) AuthNewWithExpiry(
	_ context.Context,
	permissions []auth.Permission,
	ttl time.Duration,
) (string, error) {
	return authtoken.NewSignedJWT(m.signer, permissions, ttl)
}
