package lock_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/utils/lock"
)

func TestKeyedLock(t *testing.T) {
	t.Run("serializes same key", func(t *testing.T) {
		k := lock.NewKeyed()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := k.Lock("profile-1")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		gt.Number(t, counter).Equal(100)
	})

	t.Run("pair lock does not deadlock on reversed order", func(t *testing.T) {
		k := lock.NewKeyed()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				unlock := k.LockPair("a", "b")
				unlock()
			}()
			go func() {
				defer wg.Done()
				unlock := k.LockPair("b", "a")
				unlock()
			}()
		}
		wg.Wait()
	})

	t.Run("pair lock with identical keys", func(t *testing.T) {
		k := lock.NewKeyed()
		unlock := k.LockPair("x", "x")
		unlock()
		unlock = k.Lock("x")
		unlock()
	})
}
