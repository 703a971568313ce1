package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawerToggle(t *testing.T) {
	d := New()
	assert.False(t, d.IsOpen())

	cmd := d.Toggle()
	require.NotNil(t, cmd)
	assert.IsType(t, OpenedMsg{}, cmd())
	assert.True(t, d.IsOpen())

	cmd = d.Toggle()
	require.NotNil(t, cmd)
	assert.IsType(t, ClosedMsg{}, cmd())
	assert.False(t, d.IsOpen())
}

func TestDrawerOpenCloseAreIdempotent(t *testing.T) {
	d := New()
	assert.Nil(t, d.Close())
	require.NotNil(t, d.Open())
	assert.Nil(t, d.Open())
	require.NotNil(t, d.Close())
	assert.Nil(t, d.Close())
}
