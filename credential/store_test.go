package credential

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if tok, ok, err := s.Get(ctx); err != nil || ok || tok != "" {
		t.Fatalf("expected empty store, got %q ok=%v err=%v", tok, ok, err)
	}
	if err := s.Set(ctx, "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "tok-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if tok, ok, err := s.Get(ctx); err != nil || !ok || tok != "tok-2" {
		t.Fatalf("expected tok-2, got %q ok=%v err=%v", tok, ok, err)
	}
	if err := s.Set(ctx, ""); err != nil {
		t.Fatalf("set empty: %v", err)
	}
	if _, ok, _ := s.Get(ctx); ok {
		t.Fatal("setting empty token must clear")
	}
	if err := s.Set(ctx, "tok-3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx); ok {
		t.Fatal("expected empty store after clear")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(""))
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "token")))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")
	if err := NewFileStore(path).Set(ctx, "persisted"); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	tok, ok, err := NewFileStore(path).Get(ctx)
	if err != nil || !ok || tok != "persisted" {
		t.Fatalf("expected persisted token, got %q ok=%v err=%v", tok, ok, err)
	}
}

func TestFileStoreUnreadablePath(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes reads fail.
	if err := os.Mkdir(filepath.Join(dir, "token"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, _, err := NewFileStore(filepath.Join(dir, "token")).Get(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func newRedisStoreTest(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, "hr", "", ttl), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStoreTest(t, 0)
	exerciseStore(t, store)
}

func TestRedisStoreKeyLayoutAndTTL(t *testing.T) {
	store, mr := newRedisStoreTest(t, time.Hour)
	if err := store.Set(context.Background(), "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("hr:token")
	if err != nil || got != "abc" {
		t.Fatalf("expected hr:token=abc, got %q err=%v", got, err)
	}
	if ttl := mr.TTL("hr:token"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := store.Get(context.Background()); ok {
		t.Fatal("expected token to expire with its ttl")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStoreTest(t, 0)
	mr.Close()
	if _, _, err := store.Get(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from ping, got %v", err)
	}
}
