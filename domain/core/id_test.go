package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"  " + valid + " ", RunID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, tt := range tests {
		result, err := ParseRunID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseRunID(%q) expected error, got nil", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRunID(%q) unexpected error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("ParseRunID(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestCompoundErrorClassification(t *testing.T) {
	if !IsCompoundError(NewDegenerateRegionError(1, "single point")) {
		t.Error("degenerate region should be compound scoped")
	}
	if !IsCompoundError(NewInvalidFeatureError(0, "negative max count")) {
		t.Error("invalid feature should be compound scoped")
	}
	if !IsCompoundError(NewExcessiveExpansionError(10, 5)) {
		t.Error("excessive expansion should be compound scoped")
	}
	if IsCompoundError(ErrInvalidObservation) {
		t.Error("invalid observation is batch scoped")
	}
	if !errors.Is(NewExcessiveExpansionError(-1, 5), ErrExcessiveExpansion) {
		t.Error("overflow expansion error should wrap ErrExcessiveExpansion")
	}
	if !IsNotFoundError(ErrRunNotFound) {
		t.Error("ErrRunNotFound should be a not-found error")
	}
}
