package locking

import (
	"sync"
	"testing"
)

func TestLock_MutualExclusion(t *testing.T) {
	k := New()

	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("1:2:2026-03-09")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected %d, got %d (lost update)", workers, counter)
	}
}

func TestLock_IndependentKeysDoNotBlock(t *testing.T) {
	k := New()

	unlockA := k.Lock(AdmissionKey(1, 2, "2026-03-09"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock(AdmissionKey(1, 3, "2026-03-09"))
		unlockB()
		close(done)
	}()

	<-done
}

func TestLock_EntriesAreReleased(t *testing.T) {
	k := New()

	unlock := k.Lock("a")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.entries) != 0 {
		t.Fatalf("expected empty registry, got %d entries", len(k.entries))
	}
}
