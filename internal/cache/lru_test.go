package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string, int](2, 0)
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) found a missing key")
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after update = %d", v)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 1 {
		t.Errorf("Stats() = %d, %d", hits, misses)
	}
}

func TestEviction(t *testing.T) {
	c := New[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // b is now least recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing", k)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, int](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry expired early")
	}
	now = now.Add(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry kept, Len() = %d", c.Len())
	}
}

func TestValues(t *testing.T) {
	c := New[string, int](3, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a")
	got := c.Values()
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 2 {
		t.Errorf("Values() = %v, want [1 3 2]", got)
	}
}

func TestDisabled(t *testing.T) {
	c := New[string, int](0, 0)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("zero-size cache stored a value")
	}
}

func TestRemove(t *testing.T) {
	c := New[string, int](2, 0)
	c.Set("a", 1)
	c.Remove("a")
	c.Remove("missing")
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](16, 0)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				k := strconv.Itoa((i + j) % 32)
				c.Set(k, j)
				c.Get(k)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds size", c.Len())
	}
}

func TestKey(t *testing.T) {
	a := Key("[section]", 5)
	if a != Key("[section]", 5) || len(a) != 64 {
		t.Errorf("Key not stable: %s", a)
	}
	if a == Key("[section]", 6) || a == Key("[section] ", 5) {
		t.Error("Key ignores its inputs")
	}
}
