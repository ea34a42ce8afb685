// Package locking provides per-key mutual exclusion for the admission path.
// The key is (salon, professional, date); holding it makes "read committed
// appointments → check overlap → commit" effectively atomic within one
// process. Multi-instance deployments additionally rely on the row locks the
// repository takes inside the commit transaction.
package locking

import (
	"fmt"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock blocks until the key is held and returns its unlock function. Entries
// are dropped once the last holder releases, so the map does not grow with
// the number of professional-days ever booked.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// AdmissionKey builds the serialization key for one professional-day.
func AdmissionKey(salonID, professionalID uint, date string) string {
	return fmt.Sprintf("%d:%d:%s", salonID, professionalID, date)
}
