package labelcache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_MeasureOnce(t *testing.T) {
	c := New(8)
	calls := 0
	measure := func() Extent {
		calls++
		return Extent{Width: 21, Height: 13}
	}

	k := Key{Label: "1.5", Size: 12}
	for range 3 {
		if got := c.Measure(k, measure); got != (Extent{21, 13}) {
			t.Errorf("Measure = %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("measure called %d times, want 1", calls)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestCache_SizeIsPartOfKey(t *testing.T) {
	c := New(8)
	c.Put(Key{"10", 12}, Extent{14, 13})
	if _, ok := c.Get(Key{"10", 24}); ok {
		t.Error("different size hit the cache")
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)
	for i := range 3 {
		c.Put(Key{Label: fmt.Sprint(i)}, Extent{Width: float64(i)})
	}
	// Touch 0 so 1 becomes the oldest.
	c.Get(Key{Label: "0"})
	c.Put(Key{Label: "3"}, Extent{Width: 3})

	if _, ok := c.Get(Key{Label: "1"}); ok {
		t.Error("entry 1 should have been evicted")
	}
	for _, l := range []string{"0", "2", "3"} {
		if _, ok := c.Get(Key{Label: l}); !ok {
			t.Errorf("entry %s missing", l)
		}
	}
	if c.Len() != 3 || c.Stats().Evictions != 1 {
		t.Errorf("Len=%d Evictions=%d", c.Len(), c.Stats().Evictions)
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := New(2)
	k := Key{Label: "a"}
	c.Put(k, Extent{Width: 1})
	c.Put(k, Extent{Width: 2})
	if got, _ := c.Get(k); got.Width != 2 || c.Len() != 1 {
		t.Errorf("Get = %+v Len = %d", got, c.Len())
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(0)
	c.Put(Key{Label: "a"}, Extent{})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Put(Key{Label: "b"}, Extent{Width: 5})
	if got, ok := c.Get(Key{Label: "b"}); !ok || got.Width != 5 {
		t.Error("cache unusable after Clear")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := Key{Label: fmt.Sprint((g + i) % 40)}
				c.Measure(k, func() Extent { return Extent{Width: 1} })
			}
		}()
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
