package service

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

// vendorLocks serializes the {read aggregate, calculate, append} sequence
// per vendor. Without it, two concurrent orders for the same vendor can
// both observe the pre-sale aggregate and both land in the lower tier.
type vendorLocks struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

func newVendorLocks() *vendorLocks {
	return &vendorLocks{locks: make(map[snowflake.ID]*sync.Mutex)}
}

// Lock acquires the vendor's mutex and returns its unlock function.
func (l *vendorLocks) Lock(vendorID snowflake.ID) func() {
	l.mu.Lock()
	lock, ok := l.locks[vendorID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[vendorID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
