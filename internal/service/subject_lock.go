package service

import "sync"

// subjectLocker сериализует обработку показаний по одному victim_id,
// не блокируя показания других пострадавших.
type subjectLocker struct {
	mu    sync.Mutex
	locks map[string]*subjectLock
}

type subjectLock struct {
	mu   sync.Mutex
	refs int
}

func newSubjectLocker() *subjectLocker {
	return &subjectLocker{locks: make(map[string]*subjectLock)}
}

func (l *subjectLocker) Lock(victimID string) {
	l.mu.Lock()
	entry, ok := l.locks[victimID]
	if !ok {
		entry = &subjectLock{}
		l.locks[victimID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *subjectLocker) Unlock(victimID string) {
	l.mu.Lock()
	entry := l.locks[victimID]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, victimID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
