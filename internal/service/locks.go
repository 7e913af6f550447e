package service

import "sync"

// AccountLockRegistry serializes all lot mutations for a given taxable
// account. Matching, wash-sale detection, and batch recomputation for the
// same account take the account's lock before touching its lots; accounts
// are independent and never lock each other.
type AccountLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccountLockRegistry creates an empty lock registry.
func NewAccountLockRegistry() *AccountLockRegistry {
	return &AccountLockRegistry{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the account's mutex and returns the unlock function.
//
//	defer locks.Acquire(accountID)()
func (r *AccountLockRegistry) Acquire(accountID string) func() {
	r.mu.Lock()
	lock, ok := r.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[accountID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
