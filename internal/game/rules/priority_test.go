package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionContextNesting(t *testing.T) {
	rc := NewResolutionContext(0)
	assert.False(t, rc.IsResolving())

	require.NoError(t, rc.Begin("spell-1"))
	require.NoError(t, rc.Begin("burst-1"))
	assert.Equal(t, 2, rc.Depth())
	assert.Equal(t, "burst-1", rc.Current())

	assert.Error(t, rc.End("spell-1"), "must end innermost first")
	require.NoError(t, rc.End("burst-1"))
	require.NoError(t, rc.End("spell-1"))
	assert.False(t, rc.IsResolving())
	assert.Equal(t, "", rc.Current())

	assert.Error(t, rc.End("spell-1"))
}

func TestResolutionContextMaxDepth(t *testing.T) {
	rc := NewResolutionContext(2)
	require.NoError(t, rc.Begin("a"))
	require.NoError(t, rc.Begin("b"))
	assert.Error(t, rc.Begin("c"))

	rc.Reset()
	assert.Equal(t, 0, rc.Depth())
	assert.NoError(t, rc.Begin("c"))
}

func TestResolutionContextDefaultDepth(t *testing.T) {
	rc := NewResolutionContext(-1)
	for i := 0; i < DefaultMaxResolutionDepth; i++ {
		require.NoError(t, rc.Begin("item"))
	}
	assert.Error(t, rc.Begin("item"))
}
