package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextName(t *testing.T) {
	t.Run("empty directory starts at 1", func(t *testing.T) {
		dir := t.TempDir()
		got, err := NextName(dir, "receipt_01-09-2026", ".png")
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "receipt_01-09-2026_1.png")
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("skips existing names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"base_1.png", "base_2.png"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		got, err := NextName(dir, "base", ".png")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "base_3.png") {
			t.Fatalf("got %q, want base_3.png", got)
		}
	})

	t.Run("base_1 taken yields base_2", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "base_1.png"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := NextName(dir, "base", ".png")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "base_2.png") {
			t.Fatalf("got %q, want base_2.png", got)
		}
	})
}

func TestStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.Save("receipt_x", ".png", []byte("one"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save("receipt_x", ".png", []byte("two"))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("same-base saves must not collide: %q", first)
	}

	got, err := store.Get(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "one" {
		t.Fatalf("first artifact = %q, want untouched content", got)
	}
}
