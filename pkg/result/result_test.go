// pkg/result/result_test.go
package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOk(t *testing.T) {
	r := Ok(42)
	assert.True(t, r.IsOk())
	v, err := r.Unpack()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestErr(t *testing.T) {
	r := Err[int](NotFound("order %s not found", "o-1"))
	assert.False(t, r.IsOk())
	_, err := r.Unpack()
	require.Error(t, err)
	f, ok := err.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, f.Kind)
	assert.Equal(t, "order o-1 not found", f.Detail)
}

func TestWrap(t *testing.T) {
	v, err := Wrap(7, nil).Unpack()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Wrap(0, Conflict("already terminal")).Unpack()
	f, ok := err.(Failure)
	require.True(t, ok, "declared failures pass through")
	assert.Equal(t, KindConflict, f.Kind)

	_, err = Wrap(0, errors.New("connection refused")).Unpack()
	f, ok = err.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindBackendUnavailable, f.Kind, "plain errors become backend_unavailable")
}
