package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestWithLockSerializesProperty checks that concurrent read-modify-write
// under WithLock gives the same result as sequential execution.
func TestWithLockSerializesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 100).Draw(t, "initial")
		numOps := rapid.IntRange(2, 30).Draw(t, "numOps")
		amount := rapid.Int64Range(1, 10).Draw(t, "amount")
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")

		ul := NewUserLock()
		balance := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				_ = ul.WithLock(userID, func() error {
					balance += amount
					return nil
				})
			}()
		}
		wg.Wait()

		if want := initial + int64(numOps)*amount; balance != want {
			t.Fatalf("balance = %d, want %d", balance, want)
		}
		if ul.Len() != 0 {
			t.Fatalf("expected no retained locks, got %d", ul.Len())
		}
	})
}

// TestTryLockSingleHolderProperty checks that at most one goroutine holds
// the lock at any time and the lock is free once everyone is done.
func TestTryLockSingleHolderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")
		attempts := rapid.IntRange(2, 20).Draw(t, "attempts")

		ul := NewUserLock()
		var holders, maxHolders atomic.Int32

		var wg sync.WaitGroup
		wg.Add(attempts)
		start := make(chan struct{})
		for i := 0; i < attempts; i++ {
			go func() {
				defer wg.Done()
				<-start
				if ul.TryLock(userID) {
					n := holders.Add(1)
					for {
						m := maxHolders.Load()
						if n <= m || maxHolders.CompareAndSwap(m, n) {
							break
						}
					}
					holders.Add(-1)
					ul.Unlock(userID)
				}
			}()
		}
		close(start)
		wg.Wait()

		if maxHolders.Load() > 1 {
			t.Fatalf("%d goroutines held the lock at once", maxHolders.Load())
		}
		if !ul.TryLock(userID) {
			t.Fatal("lock should be free after all goroutines finished")
		}
		ul.Unlock(userID)
	})
}

// TestIndependentUsersProperty checks locks for different users do not
// interfere.
func TestIndependentUsersProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(2, 8).Draw(t, "numUsers")
		opsPerUser := rapid.IntRange(1, 15).Draw(t, "opsPerUser")

		ul := NewUserLock()
		balances := make([]int64, numUsers)

		var wg sync.WaitGroup
		wg.Add(numUsers * opsPerUser)
		for u := 0; u < numUsers; u++ {
			for j := 0; j < opsPerUser; j++ {
				go func(uid int) {
					defer wg.Done()
					ul.Lock(int64(uid))
					defer ul.Unlock(int64(uid))
					balances[uid]++
				}(u)
			}
		}
		wg.Wait()

		for u, b := range balances {
			if b != int64(opsPerUser) {
				t.Fatalf("user %d balance = %d, want %d", u, b, opsPerUser)
			}
		}
	})
}

func TestUnlockWithoutLockIsNoop(t *testing.T) {
	ul := NewUserLock()
	ul.Unlock(42)
	if ul.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", ul.Len())
	}
}
