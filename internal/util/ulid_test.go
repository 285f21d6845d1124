package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesAndIncreases(t *testing.T) {
	a, b := New(), New()

	_, err := ulid.Parse(a)
	require.NoError(t, err)
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}
