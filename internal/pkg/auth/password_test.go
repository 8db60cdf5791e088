package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasherCost(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "default", in: 0, want: bcrypt.DefaultCost},
		{name: "custom", in: bcrypt.MinCost + 1, want: bcrypt.MinCost + 1},
		{name: "below min", in: 1, want: bcrypt.MinCost},
		{name: "above max", in: bcrypt.MaxCost + 5, want: bcrypt.MaxCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewBcryptHasher(tt.in).cost; got != tt.want {
				t.Fatalf("expected cost %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBcryptHasherHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cr")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Compare(hash, "s3cr"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := hasher.Compare("not-a-hash", "s3cr"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected malformed hash error, got %v", err)
	}
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	if _, err := hasher.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
}

func TestBcryptHasherNeedsRehash(t *testing.T) {
	cheap := NewBcryptHasher(bcrypt.MinCost)
	hash, err := cheap.Hash("s3cr")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if cheap.NeedsRehash(hash) {
		t.Fatal("hash with current cost must not need rehash")
	}
	if !NewBcryptHasher(bcrypt.MinCost + 1).NeedsRehash(hash) {
		t.Fatal("expected rehash after cost change")
	}
	if !cheap.NeedsRehash("garbage") {
		t.Fatal("expected malformed hash to need rehash")
	}
}
