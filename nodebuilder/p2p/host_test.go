package p2p

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

func TestUserAgent(t *testing.T) {
	build := &node.BuildInfo{SemanticVersion: "1.0.0", LastCommit: "abcdefg1234"}

	tests := []struct {
		name string
		ua   userAgent
		want string
	}{
		{
			name: "full node on westend",
			ua:   userAgent{network: Westend, nodeType: node.Full, build: build},
			want: "kagome/westend/full/v1.0.0/abcdefg",
		},
		{
			name: "authority on polkadot",
			ua:   userAgent{network: Polkadot, nodeType: node.Authority, build: build},
			want: "kagome/polkadot/authority/v1.0.0/abcdefg",
		},
		{
			name: "zero build info and node type",
			ua:   userAgent{network: Westend, build: &node.BuildInfo{}},
			want: "kagome/westend/unknown/unknown/unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ua.String())
		})
	}
}
