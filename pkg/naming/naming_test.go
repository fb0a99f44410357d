package naming

import (
	"errors"
	"strings"
	"testing"

	"github.com/yi-nology/easy_fm/pkg/errs"
)

func TestResolve(t *testing.T) {
	const id = "7f3c2a9e-1111-4222-8333-944455556666"

	t.Run("Raw", func(t *testing.T) {
		key, err := Resolve(Raw, "a.png", "png", id)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if key != "a.png" {
			t.Fatalf("expected a.png, got %s", key)
		}
	})

	t.Run("GID", func(t *testing.T) {
		key, err := Resolve(GID, "a.png", "png", id)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if key != id {
			t.Fatalf("expected %s, got %s", id, key)
		}
		if strings.Contains(key, "png") {
			t.Fatalf("gid key must not carry the original name: %s", key)
		}
	})

	t.Run("GIDExt", func(t *testing.T) {
		key, err := Resolve(GIDExt, "a.png", "png", id)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if key != id+".png" {
			t.Fatalf("expected %s.png, got %s", id, key)
		}
	})

	t.Run("GIDExtLeadingDot", func(t *testing.T) {
		key, _ := Resolve(GIDExt, "a.tar.gz", ".gz", id)
		if key != id+".gz" {
			t.Fatalf("expected %s.gz, got %s", id, key)
		}
	})

	t.Run("GIDExtNoExtension", func(t *testing.T) {
		key, _ := Resolve(GIDExt, "Makefile", "", id)
		if key != id {
			t.Fatalf("expected bare id, got %s", key)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Resolve(Policy("hash"), "a.png", "png", id)
		if !errors.Is(err, errs.ErrOperationFailed) {
			t.Fatalf("expected ErrOperationFailed, got %v", err)
		}
	})
}

func TestParsePolicy(t *testing.T) {
	for _, p := range Policies() {
		got, err := ParsePolicy(" " + strings.ToUpper(string(p)) + " ")
		if err != nil {
			t.Fatalf("ParsePolicy(%s): %v", p, err)
		}
		if got != p {
			t.Fatalf("expected %s, got %s", p, got)
		}
	}
	if got, err := ParsePolicy(""); err != nil || got != Default {
		t.Fatalf("expected default policy, got %s (%v)", got, err)
	}
	if _, err := ParsePolicy("md5"); !errors.Is(err, errs.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

func TestExt(t *testing.T) {
	cases := map[string]string{
		"a.png":    "png",
		"a.tar.gz": "gz",
		"Makefile": "",
		".bashrc":  "bashrc",
	}
	for name, want := range cases {
		if got := Ext(name); got != want {
			t.Errorf("Ext(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNewIDIsCollisionFree(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d generations: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}
