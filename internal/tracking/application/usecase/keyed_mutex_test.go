package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes access to one key", func(t *testing.T) {
		km := NewKeyedMutex()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("d-1")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, counter)
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		km := NewKeyedMutex()
		unlockA := km.Lock("a")
		defer unlockA()

		acquired := make(chan struct{})
		go func() {
			unlockB := km.Lock("b")
			defer unlockB()
			close(acquired)
		}()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("lock on independent key must not block")
		}
	})

	t.Run("entries are removed once released", func(t *testing.T) {
		km := NewKeyedMutex()
		unlock := km.Lock("d-1")

		km.mu.Lock()
		require.Len(t, km.locks, 1)
		km.mu.Unlock()

		unlock()

		km.mu.Lock()
		assert.Empty(t, km.locks)
		km.mu.Unlock()
	})

	t.Run("waiter keeps the entry alive", func(t *testing.T) {
		km := NewKeyedMutex()
		unlock := km.Lock("d-1")

		done := make(chan struct{})
		go func() {
			u := km.Lock("d-1")
			u()
			close(done)
		}()

		// ждем пока второй захват встанет в очередь
		for {
			km.mu.Lock()
			waiting := len(km.locks) == 1 && km.locks["d-1"].refs == 2
			km.mu.Unlock()
			if waiting {
				break
			}
			time.Sleep(time.Millisecond)
		}

		unlock()
		<-done

		km.mu.Lock()
		assert.Empty(t, km.locks)
		km.mu.Unlock()
	})
}
