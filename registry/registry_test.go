package registry_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/registry"
)

func TestRegistryBasics(t *testing.T) {
	r := registry.New[int]()

	_, ok := r.Get("missing")
	gt.False(t, ok)

	r.Put("a", 1)
	r.Put("b", 2)
	r.Put("a", 3)

	got, ok := r.Get("a")
	gt.True(t, ok)
	gt.Equal(t, got, 3)
	gt.Equal(t, r.Len(), 2)

	r.Delete("a")
	_, ok = r.Get("a")
	gt.False(t, ok)
	gt.A(t, r.IDs()).Length(1)
}

func TestRegistryGetOrCreateReturnsOneInstance(t *testing.T) {
	type session struct{ hits int }
	r := registry.New[*session]()

	var wg sync.WaitGroup
	results := make([]*session, 16)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = r.GetOrCreate("shared", func() *session {
				return &session{}
			})
		}(i)
	}
	wg.Wait()

	first := results[0]
	gt.NotNil(t, first)
	for _, got := range results[1:] {
		gt.True(t, got == first)
	}
	gt.Equal(t, r.Len(), 1)
}
