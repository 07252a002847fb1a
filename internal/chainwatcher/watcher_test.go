package chainwatcher

import (
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContentHashAcceptsIpfsNsPrefix(t *testing.T) {
	c, err := cid.Decode("bafkqaalb")
	require.NoError(t, err)

	record := append([]byte{0xE3, 0x01}, c.Bytes()...)
	got, ok := decodeContentHash(record)
	require.True(t, ok)
	assert.Equal(t, c.String(), got)
}

func TestDecodeContentHashRejectsOtherNamespace(t *testing.T) {
	c, err := cid.Decode("bafkqaalb")
	require.NoError(t, err)

	record := append([]byte{0xE4, 0x01}, c.Bytes()...) // swarm-ns, not ipfs-ns
	_, ok := decodeContentHash(record)
	assert.False(t, ok)
}

func TestDecodeContentHashRejectsShortRecord(t *testing.T) {
	_, ok := decodeContentHash([]byte{0xE3})
	assert.False(t, ok)
}

func TestDecodeContentHashRejectsMalformedCIDBytes(t *testing.T) {
	record := append([]byte{0xE3, 0x01}, []byte(strings.Repeat("x", 4))...)
	_, ok := decodeContentHash(record)
	assert.False(t, ok)
}
