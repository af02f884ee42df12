package secrets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Put("k", "v")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := NewCache[int](time.Minute)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsEvicted(t *testing.T) {
	c := NewCache[string](10 * time.Millisecond)
	c.Put("k", "v")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "expired entry must miss")
}

func TestCache_Bust(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Put("k", "v")
	c.Bust("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_OverwriteRefreshesValue(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Put("k", "old")
	c.Put("k", "new")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}
