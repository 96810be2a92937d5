package tokenstore

import (
	"errors"
	"testing"

	"github.com/desertthunder/vidgen/internal/shared"
)

func setupSQLiteStore(t *testing.T, key string) *SQLiteStore {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSQLiteStore(db, key)
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore("") },
		"sqlite": func(t *testing.T) Store { return setupSQLiteStore(t, "") },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("empty store reports no token", func(t *testing.T) {
				store := newStore(t)
				if _, err := store.Get(); !errors.Is(err, shared.ErrNoToken) {
					t.Errorf("Get() error = %v, want ErrNoToken", err)
				}
			})

			t.Run("set then get", func(t *testing.T) {
				store := newStore(t)
				if err := store.Set("abc"); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				got, err := store.Get()
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got != "abc" {
					t.Errorf("Get() = %q, want abc", got)
				}
			})

			t.Run("set replaces existing token", func(t *testing.T) {
				store := newStore(t)
				_ = store.Set("first")
				_ = store.Set("second")
				got, _ := store.Get()
				if got != "second" {
					t.Errorf("Get() = %q, want second", got)
				}
			})

			t.Run("delete", func(t *testing.T) {
				store := newStore(t)
				_ = store.Set("abc")
				if err := store.Delete(); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if _, err := store.Get(); !errors.Is(err, shared.ErrNoToken) {
					t.Errorf("Get() after Delete error = %v, want ErrNoToken", err)
				}
				if err := store.Delete(); err != nil {
					t.Errorf("second Delete() error = %v", err)
				}
			})
		})
	}
}

func TestSQLiteStore(t *testing.T) {
	t.Run("keeps a single row per key", func(t *testing.T) {
		store := setupSQLiteStore(t, "")
		for _, tok := range []string{"a", "b", "c"} {
			if err := store.Set(tok); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
		}

		var count int
		if err := store.db.QueryRow("SELECT COUNT(*) FROM credentials").Scan(&count); err != nil {
			t.Fatalf("count query error = %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 credentials row, got %d", count)
		}
	})

	t.Run("custom key", func(t *testing.T) {
		store := setupSQLiteStore(t, "staging-token")
		_ = store.Set("abc")

		var key string
		if err := store.db.QueryRow("SELECT key FROM credentials").Scan(&key); err != nil {
			t.Fatalf("key query error = %v", err)
		}
		if key != "staging-token" {
			t.Errorf("expected key staging-token, got %s", key)
		}
	})

	t.Run("rejects empty token", func(t *testing.T) {
		store := setupSQLiteStore(t, "")
		if err := store.Set(""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Set(\"\") error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("closed database surfaces errors", func(t *testing.T) {
		store := setupSQLiteStore(t, "")
		store.db.Close()

		if _, err := store.Get(); err == nil || errors.Is(err, shared.ErrNoToken) {
			t.Errorf("Get() on closed db error = %v, want storage error", err)
		}
		if err := store.Set("abc"); err == nil {
			t.Error("Set() on closed db expected error")
		}
		if err := store.Delete(); err == nil {
			t.Error("Delete() on closed db expected error")
		}
	})
}
