package naming

import (
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRegistryNext(t *testing.T) {
	t.Run("counts per tag starting at one", func(t *testing.T) {
		r := NewRegistry()
		assert.Equal(t, "Flow1", r.Next("Flow"))
		assert.Equal(t, "Flow2", r.Next("Flow"))
		assert.Equal(t, "IOFlow1", r.Next("IOFlow"))
		assert.Equal(t, "Flow3", r.Next("Flow"))
	})

	t.Run("concurrent callers get distinct names", func(t *testing.T) {
		r := NewRegistry()
		const n = 100

		var (
			mu    sync.Mutex
			wg    sync.WaitGroup
			names = map[string]bool{}
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				name := r.Next("Block")
				mu.Lock()
				names[name] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, n, len(names))
		assert.True(t, names["Block1"])
		assert.True(t, names["Block100"])
	})
}
