package cache

import "testing"

func TestGetAndPut(t *testing.T) {
	c := New[float64](0)

	if _, ok := c.Get(Key("in1", "1,2")); ok {
		t.Error("Expected a miss on an empty cache")
	}

	c.Put(Key("in1", "1,2"), 3.5)
	v, ok := c.Get(Key("in1", "1,2"))
	if !ok {
		t.Fatal("Expected a hit after Put")
	}
	if v != 3.5 {
		t.Errorf("Expected 3.5, got %v", v)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("Expected the oldest entry to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("Expected 'b' to survive")
	}
	if c.Len() != 2 {
		t.Errorf("Expected size 2, got %d", c.Len())
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", c.Stats().Evictions)
	}
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Expected overwritten value 10, got %d", v)
	}
	if c.Stats().Evictions != 0 {
		t.Errorf("Expected no evictions, got %d", c.Stats().Evictions)
	}
}

func TestClear(t *testing.T) {
	c := New[int](0)
	c.Put("a", 1)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}
