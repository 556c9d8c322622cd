package cache

import (
	"sync"
	"testing"
)

func TestSnapshot_GetPutInvalidate(t *testing.T) {
	s := New()

	if _, ok := s.Get("Main Store|North|Retail|Shop"); ok {
		t.Error("Empty slot must miss")
	}

	s.Put("Main Store|North|Retail|Shop", []string{"a", "b"})

	v, ok := s.Get("Main Store|North|Retail|Shop")
	if !ok {
		t.Fatal("Expected a hit for the stored key")
	}
	if items := v.([]string); len(items) != 2 {
		t.Errorf("Wrong value returned: %v", v)
	}

	// A different key must miss even though the slot is occupied.
	if _, ok := s.Get("Main Store|North|Wholesale|Shop"); ok {
		t.Error("Key mismatch must miss")
	}

	s.Invalidate()
	if _, ok := s.Get("Main Store|North|Retail|Shop"); ok {
		t.Error("Invalidated slot must miss")
	}
}

func TestSnapshot_PutDisplacesPreviousKey(t *testing.T) {
	s := New()
	s.Put("first", 1)
	s.Put("second", 2)

	if _, ok := s.Get("first"); ok {
		t.Error("Single slot: storing a new pair must displace the old key")
	}
	if v, ok := s.Get("second"); !ok || v.(int) != 2 {
		t.Error("Latest pair must be retrievable")
	}
}

func TestSnapshot_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Put("key", j)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if v, ok := s.Get("key"); ok {
					// The pair swaps atomically; a hit always carries a value.
					if v == nil {
						t.Error("Hit returned nil value")
						return
					}
				}
				if j%100 == 0 {
					s.Invalidate()
				}
			}
		}()
	}
	wg.Wait()
}
