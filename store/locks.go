package store

import "sync"

// lockFrom locks the mutex stored for key in m, creating it on first use.
func lockFrom(m *sync.Map, key string) func() {
	// fast path Load
	if v, ok := m.Load(key); ok {
		mtx := v.(*sync.Mutex)
		mtx.Lock()
		return mtx.Unlock
	}

	// Otherwise create and store a new mutex (race-safe via LoadOrStore)
	actual, _ := m.LoadOrStore(key, &sync.Mutex{})
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}
