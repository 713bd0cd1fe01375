package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompressor_RoundTrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	input := bytes.Repeat([]byte(`{"accounts":{"alice":{"balance":1000}}}`), 50)
	compressed, err := c.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(input))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestZstdCompressor_RejectsPlainJSON(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Decompress([]byte(`{"coins":{}}`))
	assert.Error(t, err)
}
