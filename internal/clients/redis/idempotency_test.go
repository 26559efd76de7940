package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

func TestIdempotencyStoreAcquireRelease(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store, err := NewIdempotencyStore(addr, log)
	if err != nil {
		t.Fatalf("NewIdempotencyStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	key := "test-" + uuid.NewString()
	ok, err := store.Acquire(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("Acquire: ok=%v err=%v", ok, err)
	}
	ok, err = store.Acquire(ctx, key, time.Minute)
	if err != nil || ok {
		t.Fatalf("Acquire (held): ok=%v err=%v", ok, err)
	}
	if err := store.Release(ctx, key); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ok, err = store.Acquire(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("Acquire (after release): ok=%v err=%v", ok, err)
	}
	_ = store.Release(ctx, key)
}

func TestNewIdempotencyStoreRequiresAddr(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if _, err := NewIdempotencyStore("  ", log); err == nil {
		t.Fatalf("expected error for empty address")
	}
	if _, err := NewIdempotencyStore("localhost:6379", nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
