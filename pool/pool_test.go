package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_Dedups(t *testing.T) {
	p := New()
	id1 := p.Add("foo")
	id2 := p.Add("bar")
	id3 := p.Add("foo")

	assert.Equal(t, id1, id3)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, p.Len())
}

func TestGet_RoundTrips(t *testing.T) {
	p := New()
	id := p.Add("hello")
	assert.Equal(t, "hello", p.Get(id))
}

func TestGet_PanicsOnBadID(t *testing.T) {
	p := New()
	p.Add("a")
	assert.Panics(t, func() { p.Get(ID(42)) })
	assert.Panics(t, func() { p.Get(ID(-1)) })
}

func TestReverseLookup(t *testing.T) {
	p := New()
	id := p.Add("x")

	got, ok := p.ReverseLookup("x")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = p.ReverseLookup("nonexistent")
	assert.False(t, ok)
}

func TestZeroValuePoolIsUsable(t *testing.T) {
	var p Pool
	id := p.Add("z")
	assert.Equal(t, "z", p.Get(id))
}

func TestIDLess(t *testing.T) {
	assert.True(t, ID(1).Less(ID(2)))
	assert.False(t, ID(2).Less(ID(1)))
	assert.False(t, ID(1).Less(ID(1)))
}
