package core

import (
	"testing"

	"github.com/google/uuid"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id == "" {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestNewRunIDIsUUID tests that run IDs are valid UUIDs
func TestNewRunIDIsUUID(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id.String()); err != nil {
		t.Errorf("Expected run ID %q to be a UUID: %v", id, err)
	}
}

// TestHashDeterminism tests that equal inputs hash identically
func TestHashDeterminism(t *testing.T) {
	a := NewHash([]byte("feature-a"))
	b := NewHash([]byte("feature-a"))
	c := NewHash([]byte("feature-b"))

	if a != b {
		t.Errorf("Expected equal hashes, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different inputs to hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}
