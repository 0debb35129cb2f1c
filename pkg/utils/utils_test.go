package utils

import "testing"

func TestSerialID(t *testing.T) {
	if got := SerialID("CU", 2024, 7); got != "CU20240007" {
		t.Errorf("expected CU20240007, got %s", got)
	}
	if got := SerialID("FI", 2025, 12345); got != "FI202512345" {
		t.Errorf("expected FI202512345, got %s", got)
	}
}

func TestNewOrderedIDIncreases(t *testing.T) {
	prev := NewOrderedID()
	for i := 0; i < 1000; i++ {
		id := NewOrderedID()
		if id <= prev {
			t.Fatalf("expected %s > %s", id, prev)
		}
		prev = id
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("secret1", h) {
		t.Error("expected password to verify")
	}
	if CheckPassword("secret2", h) {
		t.Error("expected wrong password to fail")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane@STU.cu.edu.ng "); got != "jane@stu.cu.edu.ng" {
		t.Errorf("unexpected %q", got)
	}
}
