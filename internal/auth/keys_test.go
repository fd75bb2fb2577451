package auth

import (
	"strings"
	"testing"
)

func TestHashKeyDeterministic(t *testing.T) {
	a := HashKey("secret-key")
	b := HashKey("secret-key")
	if a != b {
		t.Errorf("same key hashed differently: %s vs %s", a, b)
	}
	if a == HashKey("other-key") {
		t.Error("different keys produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestHashKeyTrimsWhitespace(t *testing.T) {
	if HashKey("  key  ") != HashKey("key") {
		t.Error("whitespace should not change the hash")
	}
}

func TestNewKey(t *testing.T) {
	k1, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	k2, _ := NewKey()
	if k1 == k2 {
		t.Error("two generated keys are identical")
	}
	if !strings.HasPrefix(k1, "pf_") {
		t.Errorf("key %q missing prefix", k1)
	}
}
