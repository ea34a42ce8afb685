package repository

import "testing"

// Two processes must compute the same advisory key for the same
// professional, and different professionals must not contend.
func TestAdmissionLockKey(t *testing.T) {
	if admissionLockKey(1, 2) != admissionLockKey(1, 2) {
		t.Fatal("key must be deterministic across callers")
	}

	if admissionLockKey(1, 2) == admissionLockKey(1, 3) {
		t.Fatal("different professionals must map to different keys")
	}
	if admissionLockKey(1, 2) == admissionLockKey(2, 2) {
		t.Fatal("different salons must map to different keys")
	}
}
