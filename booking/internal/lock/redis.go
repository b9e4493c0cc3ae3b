package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `json:"-" envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"BOOKING_LOCK_TTL" default:"15s"`
}

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another caller is left alone.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

const (
	retryInterval  = 20 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

type redisLocker struct {
	client   redis.Cmdable
	ttl      time.Duration
	newToken func() string
	log      *zap.Logger
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

// NewRedis returns a Locker shared by every process talking to the same
// redis. A holder that dies keeps the key for at most ttl.
func NewRedis(client redis.Cmdable, ttl time.Duration, log *zap.Logger) Locker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &redisLocker{
		client:   client,
		ttl:      ttl,
		newToken: uuid.NewString,
		log:      log.Named("lock"),
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := l.newToken()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.Wrap(err, "redis setnx")
		}
		if ok {
			break
		}
		t := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.log.Warn("release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
