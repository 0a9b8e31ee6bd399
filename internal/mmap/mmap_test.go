//go:build unix || windows

package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(8192)
	require.NoError(t, err)

	assert.Equal(t, 8192, m.Size())
	data := m.Bytes()
	require.Len(t, data, 8192)
	assert.Equal(t, byte(0), data[100], "anonymous mappings are zero-filled")

	data[0] = 42
	data[8191] = 7
	assert.Equal(t, byte(42), m.Bytes()[0])

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Advise(AccessRandom))
	require.NoError(t, m.Advise(AccessDefault))

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Close(), "close is idempotent")
	assert.ErrorIs(t, m.Advise(AccessWillNeed), ErrClosed)
}

func TestMapAnonInvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
