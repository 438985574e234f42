package computebudget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Instructions(t *testing.T) {
	ixs, err := Config{}.Instructions()
	require.NoError(t, err)
	assert.Empty(t, ixs)
	assert.True(t, Config{}.IsZero())

	ixs, err = Config{Units: 400_000, MicroLamports: 1000}.Instructions()
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	limit, err := ixs[0].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0x80, 0x1a, 0x06, 0x00}, limit)

	price, err := ixs[1].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0xe8, 0x03, 0, 0, 0, 0, 0, 0}, price)
	assert.Equal(t, ProgramID, ixs[1].ProgramID())
}
