package arena

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcquirer struct {
	limit int64
	used  int64
}

func (f *fakeAcquirer) AcquireMemory(_ context.Context, amount int64) error {
	if f.used+amount > f.limit {
		return errors.New("budget exhausted")
	}
	f.used += amount
	return nil
}

func (f *fakeAcquirer) ReleaseMemory(amount int64) {
	f.used -= amount
}

func backends(t *testing.T) []Backend {
	t.Helper()
	if runtime.GOOS == "js" || runtime.GOOS == "wasip1" || runtime.GOOS == "plan9" {
		return []Backend{BackendHeap}
	}
	return []Backend{BackendHeap, BackendMmap}
}

func TestArena_SequentialClaims(t *testing.T) {
	for _, backend := range backends(t) {
		t.Run(backend.String(), func(t *testing.T) {
			a, err := New(context.Background(), 192, 64, WithBackend(backend))
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, 192, a.Size())
			assert.Equal(t, backend, a.Backend())
			assert.Zero(t, uintptr(unsafe.Pointer(&a.Bytes()[0]))%64)

			off, x, err := ClaimTyped[float64](a, 64, 3)
			require.NoError(t, err)
			assert.Equal(t, 0, off)
			assert.Len(t, x, 3)

			off, v, err := ClaimTyped[int32](a, 64, 7)
			require.NoError(t, err)
			assert.Equal(t, 64, off)
			assert.Len(t, v, 7)

			off, m, err := ClaimTyped[float32](a, 64, 12)
			require.NoError(t, err)
			assert.Equal(t, 128, off)
			assert.Len(t, m, 12)

			assert.Zero(t, a.Remaining())

			// Regions never overlap: writes to one are invisible in the others.
			for i := range x {
				x[i] = -1
			}
			for i := range m {
				m[i] = float32(i)
			}
			for _, e := range v {
				assert.Zero(t, e)
			}
			assert.Equal(t, float32(11), m[11])

			st := a.Stats()
			assert.Equal(t, uint64(192), st.BytesReserved)
			assert.Equal(t, uint64(24+28+48), st.BytesUsed)
			assert.Equal(t, uint64(192-100), st.BytesWasted)
			assert.Equal(t, uint64(3), st.Regions)
		})
	}
}

func TestArena_Exhausted(t *testing.T) {
	a, err := New(context.Background(), 64, 64)
	require.NoError(t, err)

	_, _, err = a.Claim(128, 8)
	assert.ErrorIs(t, err, ErrExhausted)

	_, _, err = ClaimTyped[float64](a, 16, 4)
	assert.ErrorIs(t, err, ErrExhausted)

	_, _, err = a.Claim(8, 16)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestArena_Misaligned(t *testing.T) {
	a, err := New(context.Background(), 128, 8)
	require.NoError(t, err)

	_, _, err = a.Claim(4, 4)
	require.NoError(t, err)

	_, _, err = a.Claim(8, 8)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestArena_ElementAlignment(t *testing.T) {
	a, err := New(context.Background(), 64, 4)
	require.NoError(t, err)

	_, _, err = ClaimTyped[float64](a, 8, 1)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestArena_Empty(t *testing.T) {
	a, err := New(context.Background(), 0, 64)
	require.NoError(t, err)

	assert.Nil(t, a.Bytes())
	off, xs, err := ClaimTyped[float64](a, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, off)
	assert.Empty(t, xs)
	assert.NoError(t, a.Close())
}

func TestArena_InvalidArgs(t *testing.T) {
	_, err := New(context.Background(), -1, 64)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	_, err = New(context.Background(), 64, 48)
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestArena_MemoryAcquirer(t *testing.T) {
	acq := &fakeAcquirer{limit: 256}

	a, err := New(context.Background(), 192, 64, WithMemoryAcquirer(acq))
	require.NoError(t, err)
	assert.Equal(t, int64(192), acq.used)

	_, err = New(context.Background(), 128, 64, WithMemoryAcquirer(acq))
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, int64(192), acq.used, "failed allocation must not leak a reservation")

	require.NoError(t, a.Close())
	assert.Zero(t, acq.used)
	require.NoError(t, a.Close())
	assert.Zero(t, acq.used)
}

func TestArena_ClosedClaim(t *testing.T) {
	a, err := New(context.Background(), 64, 64)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, _, err = a.Claim(8, 8)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, a.Bytes())
}

func TestArena_LargeAlignmentMmap(t *testing.T) {
	if runtime.GOOS == "js" || runtime.GOOS == "wasip1" || runtime.GOOS == "plan9" {
		t.Skip("no anonymous mappings")
	}
	a, err := New(context.Background(), 100, 1<<16, WithBackend(BackendMmap))
	require.NoError(t, err)
	defer a.Close()

	assert.Zero(t, uintptr(unsafe.Pointer(&a.Bytes()[0]))%(1<<16))
	assert.Equal(t, 100, a.Size())
}

func TestParseBackend(t *testing.T) {
	for _, b := range []Backend{BackendHeap, BackendMmap} {
		got, ok := ParseBackend(b.String())
		assert.True(t, ok)
		assert.Equal(t, b, got)
	}
	_, ok := ParseBackend("gpu")
	assert.False(t, ok)
}
