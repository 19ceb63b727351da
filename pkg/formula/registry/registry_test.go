package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[string, int]()

	r.Register("one", 1)
	r.Register("two", 2)

	v, ok := r.Get("one")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	// Register overwrites.
	r.Register("one", 10)
	v, _ = r.Get("one")
	assert.Equal(t, 10, v)
}

func TestRegistry_RegisterMany(t *testing.T) {
	r := New[string, string]()
	r.RegisterMany(map[string]string{
		"a": "alpha",
		"b": "beta",
	})

	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has("a"))
	assert.True(t, r.Has("b"))
}

func TestRegistry_Keys(t *testing.T) {
	r := New[string, int]()
	r.Register("x", 1)
	r.Register("y", 2)

	keys := r.Keys()
	assert.ElementsMatch(t, []string{"x", "y"}, keys)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Register(n, n*n)
		}(i)
		go func(n int) {
			defer wg.Done()
			r.Has(n)
			r.Get(n)
			r.Len()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, r.Len())
}
