package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyNameRoundtrip(t *testing.T) {
	// the names the node actually stores
	for _, name := range []KeyName{"jwt-secret", "p2p-key"} {
		decoded, err := KeyNameFromBase32(name.Base32())
		require.NoError(t, err)
		require.Equal(t, name, decoded)
	}
}

func FuzzKeyStoreName(f *testing.F) {
	corpus := []string{
		"jwt-secret",
		"p2p-key",
		"test",
		">F?FD?FDSJFKL$&*(#W)",
	}

	for _, c := range corpus {
		f.Add(c)
	}

	f.Fuzz(func(t *testing.T, data string) {
		k := KeyName(data)
		encoded := k.Base32()
		if _, err := KeyNameFromBase32(encoded); err != nil {
			t.Errorf("error decoding base32: %v", err)
		}
	})
}
