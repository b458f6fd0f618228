package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/terminator-run/terminator/internal/element"
)

func TestHandleCache_PutThenGetRoundTrips(t *testing.T) {
	c := NewHandleCache(time.Minute, nil)
	el := element.New(nil, "tok-1", 1, element.Attributes{Name: "Save"})

	c.Put(el)
	got, ok := c.Get(el.ID())
	assert.True(t, ok)
	assert.Same(t, el, got)
	assert.Equal(t, 1, c.Len())
}

func TestHandleCache_GetMissingReturnsFalse(t *testing.T) {
	c := NewHandleCache(time.Minute, nil)
	_, ok := c.Get("does-not-exist")
	assert.False(t, ok)
}

func TestHandleCache_ExpiredEntryIsNotReturned(t *testing.T) {
	c := NewHandleCache(time.Millisecond, nil)
	el := element.New(nil, "tok-1", 1, element.Attributes{})
	c.Put(el)

	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(el.ID())
	assert.False(t, ok)
}

func TestHandleCache_DeleteRemovesEntryImmediately(t *testing.T) {
	c := NewHandleCache(time.Minute, nil)
	el := element.New(nil, "tok-1", 1, element.Attributes{})
	c.Put(el)

	c.Delete(el.ID())
	_, ok := c.Get(el.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestNewHandleCache_NonPositiveTTLFallsBackToDefault(t *testing.T) {
	c := NewHandleCache(0, nil)
	assert.Equal(t, DefaultHandleTTL, c.ttl)
}
