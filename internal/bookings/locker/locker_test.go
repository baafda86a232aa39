package locker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKey_IgnoresLocation(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	utc := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	local := utc.In(ny)

	if Key("p1", utc) != Key("p1", local) {
		t.Errorf("same instant produced different keys: %s vs %s", Key("p1", utc), Key("p1", local))
	}
	if Key("p1", utc) == Key("p2", utc) {
		t.Error("different providers must not share a key")
	}
	if Key("p1", utc) == Key("p1", utc.Add(time.Minute)) {
		t.Error("different instants must not share a key")
	}
}

func TestRedisSlotLocker_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisSlotLocker(client, time.Second)
	called := false
	err := l.WithSlotLock(context.Background(), "p1", time.Now(), func(ctx context.Context) error {
		called = true
		return nil
	})

	if err == nil {
		t.Fatal("expected an error when Redis is unreachable")
	}
	if errors.Is(err, ErrLockNotAcquired) {
		t.Errorf("connection failures must not look like contention: %v", err)
	}
	if called {
		t.Error("fn must not run without the lock")
	}
}
