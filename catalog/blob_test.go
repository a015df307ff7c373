package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	assert.Nil(t, compress(nil))

	b, err := decompress(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	tiles := bytes.Repeat([]byte{0x00, 0x00, 0xff, 0x81}, 1024)
	packed := compress(tiles)
	assert.Less(t, len(packed), len(tiles))

	b, err = decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, tiles, b)

	_, err = decompress([]byte("not zstd"))
	assert.Error(t, err)
}
