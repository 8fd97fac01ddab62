package validation

import "testing"

func TestIsValidIdentifier(t *testing.T) {
	ok := []string{"a", "A", "_a", "a1", "a_b2", "snake_case_123", "users"}
	bad := []string{"", "1a", "a-b", "a b", "a;b", "a\"b", "a.b", "a/b", "a--", "select", "from", "order", "table", "group", "user", "returning"}

	for _, s := range ok {
		if !IsValidIdentifier(s) {
			t.Fatalf("expected valid: %q", s)
		}
	}
	for _, s := range bad {
		if IsValidIdentifier(s) {
			t.Fatalf("expected invalid: %q", s)
		}
	}
}

func TestValidateCollection(t *testing.T) {
	if err := ValidateCollection("orders"); err != nil {
		t.Fatalf("expected valid collection, got %v", err)
	}
	if err := ValidateCollection("orders; drop"); err == nil {
		t.Fatal("expected invalid collection")
	}
}
