package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSessionWalk(t *testing.T) {
	s := &SearchSession{Results: []int64{10, 20, 30}}

	id, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)

	assert.True(t, s.Advance())
	id, err = s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)

	assert.True(t, s.Advance())
	assert.False(t, s.Advance())

	_, err = s.Current()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSearchSessionStaysExhausted(t *testing.T) {
	s := &SearchSession{Results: []int64{1}}

	assert.False(t, s.Advance())
	assert.False(t, s.Advance())
	assert.False(t, s.Advance())

	// Cursor never wraps back to a valid index.
	_, err := s.Current()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, s.Cursor)
}

func TestSearchSessionEmpty(t *testing.T) {
	s := &SearchSession{}

	_, err := s.Current()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.False(t, s.Advance())
}
