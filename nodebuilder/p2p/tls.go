package p2p

import (
	"crypto/tls"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p"
	ws "github.com/libp2p/go-libp2p/p2p/transport/websocket"

	"github.com/rotkonetworks/kagome/libs/utils"
)

const (
	cert = "cert.pem"
	key  = "key.pem"
)

var tlsPath = "TLS_PATH"

// tlsEnabled checks whether the environment points at a TLS keypair and
// loads it. The returned config is nil when TLS is not configured.
func tlsEnabled() (*tls.Config, bool, error) {
	path := os.Getenv(tlsPath)
	if path == "" {
		return nil, false, nil
	}

	certPath := filepath.Join(path, cert)
	keyPath := filepath.Join(path, key)
	exist := utils.Exists(certPath) && utils.Exists(keyPath)
	if !exist {
		return nil, false, nil
	}

	keyPair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, false, err
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{keyPair},
	}, true, nil
}

// wsTransport returns the websocket transport option, upgraded to wss when a
// TLS config is present.
func wsTransport(config *tls.Config) libp2p.Option {
	if config == nil {
		return libp2p.Transport(ws.New)
	}
	return libp2p.Transport(ws.New, ws.WithTLSConfig(config))
}
