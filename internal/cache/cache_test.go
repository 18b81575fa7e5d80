package cache

import (
	"testing"
	"time"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("https://example.com"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestSetThenGetHits(t *testing.T) {
	c := New(time.Minute)
	c.Set("https://example.com", map[string]any{"title": "Example"})

	got, ok := c.Get("https://example.com")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got["title"] != "Example" {
		t.Fatalf("got %v", got)
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("https://example.com", map[string]any{"title": "Example"})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("https://example.com"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", c.Len())
	}
}
