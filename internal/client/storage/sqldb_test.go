package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		source string
	}{
		{"", DriverFile, DefaultFile},
		{"state.json", DriverFile, "state.json"},
		{"sqlite:cart.db", DriverSQLite, "cart.db"},
		{"sqlite::memory:", DriverSQLite, ":memory:"},
		{"postgres://u:p@localhost/cart", DriverPostgres, "postgres://u:p@localhost/cart"},
		{"postgresql://localhost/cart", DriverPostgres, "postgresql://localhost/cart"},
	}
	for _, tt := range tests {
		driver, source := ParseDSN(tt.dsn)
		if driver != tt.driver || source != tt.source {
			t.Errorf("ParseDSN(%q) = %q, %q; want %q, %q", tt.dsn, driver, source, tt.driver, tt.source)
		}
	}
}

func TestInitSQL_UnsupportedDriver(t *testing.T) {
	if _, err := InitSQL("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestInitSQL_SQLiteRoundTrip(t *testing.T) {
	db, err := InitSQL(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("InitSQL failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	kv := NewSQLKV(db)

	if err := kv.Set(ctx, "token", "one", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "token", "two", 0); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := kv.Get(ctx, "token")
	if err != nil || got != "two" {
		t.Fatalf("expected two, got %q, %v", got, err)
	}

	if err := kv.Set(ctx, "login_email", "a@b.c", time.Minute); err != nil {
		t.Fatalf("Set with ttl failed: %v", err)
	}
	kv.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := kv.Get(ctx, "login_email"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired entry to be hidden, got %v", err)
	}

	if err := kv.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	kv, closeFn, err := Open(context.Background(), path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeFn()

	if _, ok := kv.(*FileKV); !ok {
		t.Errorf("expected *FileKV, got %T", kv)
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dsn := "sqlite:" + filepath.Join(t.TempDir(), "cart.db")
	kv, closeFn, err := Open(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeFn()

	if _, ok := kv.(*SQLKV); !ok {
		t.Fatalf("expected *SQLKV, got %T", kv)
	}
	if err := kv.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
}
