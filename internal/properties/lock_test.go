package properties

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLocker(rdb, time.Second), mr
}

func TestLockerAcquireAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "deals:modelo_ktm")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !mr.Exists("lock:property:deals:modelo_ktm") {
		t.Fatal("lease key not set")
	}

	release()
	if mr.Exists("lock:property:deals:modelo_ktm") {
		t.Fatal("release must delete the lease key")
	}
}

func TestLockerBlocksSecondHolder(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "deals:modelo_ktm")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(waitCtx, "deals:modelo_ktm"); err == nil {
		t.Fatal("second Acquire must block until the lease is released")
	}

	release()
	release2, err := locker.Acquire(ctx, "deals:modelo_ktm")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

func TestLockerKeysAreIndependent(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "deals:modelo_ktm")
	if err != nil {
		t.Fatalf("Acquire A: %v", err)
	}
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "deals:modelo_yamaha")
	if err != nil {
		t.Fatalf("Acquire B: %v", err)
	}
	releaseB()
}
