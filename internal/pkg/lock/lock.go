// Package lock provides per-user mutexes for in-process serialisation of
// balance-changing requests.
package lock

import "sync"

// userMutex wraps a mutex with reference counting for cleanup.
type userMutex struct {
	mu       sync.Mutex
	refCount int
}

// UserLock hands out one mutex per user ID. Entries are dropped once no
// goroutine holds or waits on them, so the map does not grow with the
// number of users ever seen.
type UserLock struct {
	mu    sync.Mutex
	locks map[int64]*userMutex
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{locks: make(map[int64]*userMutex)}
}

func (ul *UserLock) acquire(userID int64) *userMutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m, ok := ul.locks[userID]
	if !ok {
		m = &userMutex{}
		ul.locks[userID] = m
	}
	m.refCount++
	return m
}

func (ul *UserLock) release(userID int64, m *userMutex) {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m.refCount--
	if m.refCount == 0 {
		delete(ul.locks, userID)
	}
}

// Lock acquires the lock for a user.
func (ul *UserLock) Lock(userID int64) {
	ul.acquire(userID).mu.Lock()
}

// Unlock releases the lock for a user. Unlocking a user that is not locked
// is a no-op.
func (ul *UserLock) Unlock(userID int64) {
	ul.mu.Lock()
	m, ok := ul.locks[userID]
	ul.mu.Unlock()
	if !ok {
		return
	}
	m.mu.Unlock()
	ul.release(userID, m)
}

// TryLock attempts to acquire the lock without blocking.
func (ul *UserLock) TryLock(userID int64) bool {
	m := ul.acquire(userID)
	if m.mu.TryLock() {
		return true
	}
	ul.release(userID, m)
	return false
}

// WithLock executes fn while holding the user's lock.
func (ul *UserLock) WithLock(userID int64, fn func() error) error {
	ul.Lock(userID)
	defer ul.Unlock(userID)
	return fn()
}

// Len returns the number of users with a held or awaited lock.
func (ul *UserLock) Len() int {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return len(ul.locks)
}
