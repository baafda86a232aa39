// Package locker serialises booking creation per provider slot.
package locker

import (
	"context"
	"errors"
	"fmt"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Booking_locks"

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotLocker runs fn while holding an exclusive lock on one provider slot.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, providerID string, dateTime time.Time, fn func(ctx context.Context) error) error
}

// Key identifies a provider slot independent of the caller's time zone.
func Key(providerID string, dateTime time.Time) string {
	return fmt.Sprintf("lock:slot:%s:%d", providerID, dateTime.UTC().Unix())
}

// New picks the Redis locker when Redis is configured, otherwise the Mongo one.
func New(cfg *config.Config) SlotLocker {
	if cfg.Client.Redis != nil {
		return NewRedisSlotLocker(cfg.Client.Redis, cfg.SlotLockTTL)
	}
	return NewMongoSlotLocker(cfg)
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) SlotLocker {
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, providerID string, dateTime time.Time, fn func(ctx context.Context) error) error {
	key := Key(providerID, dateTime)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

// mongoSlotLocker inserts a lock document keyed by slot. The unique _id makes
// the insert the acquisition; a TTL index on expires_at reaps abandoned locks.
type mongoSlotLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	timeout    time.Duration
}

func NewMongoSlotLocker(cfg *config.Config) SlotLocker {
	return &mongoSlotLocker{
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
		ttl:        cfg.SlotLockTTL,
		timeout:    cfg.MongoWriteTimeout,
	}
}

func (l *mongoSlotLocker) WithSlotLock(ctx context.Context, providerID string, dateTime time.Time, fn func(ctx context.Context) error) error {
	key := Key(providerID, dateTime)
	ts := time.Now().UTC()

	if err := l.acquire(ctx, key, ts); err != nil {
		return err
	}
	defer func() {
		rctx, cancel := mongotx.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		_, _ = l.collection.DeleteOne(rctx, bson.M{"_id": key, "created_at": ts.Truncate(time.Millisecond)})
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *mongoSlotLocker) acquire(ctx context.Context, key string, ts time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, l.timeout)
	defer cancel()

	// The TTL monitor only runs every minute, so clear a lock that has
	// outlived its TTL before trying to take it.
	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": ts}}); err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}

	_, err := l.collection.InsertOne(ctx, model.SlotLock{
		ID:        key,
		ExpiresAt: ts.Add(l.ttl),
		CreatedAt: ts.Truncate(time.Millisecond),
	})
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return ErrLockNotAcquired
		}
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	return nil
}
