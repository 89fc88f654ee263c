package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyspaceEventsParam = "notify-keyspace-events"

var (
	_ KeyValueStore = (*Redis)(nil)
	_ Watcher       = (*Redis)(nil)
	_ BatchWriter   = (*Redis)(nil)
)

// Redis stores values in a shared redis instance under a key prefix
type Redis struct {
	client *redis.Client
	prefix string
}

// DialRedis connects and pings redis before returning a store
func DialRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", errors.ErrStoreUnavailable, addr, err)
	}

	return NewRedis(client, prefix), nil
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetAll writes every value with one MSET
func (r *Redis) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, 2*len(values))
	for key, value := range values {
		pairs = append(pairs, r.key(key), value)
	}
	if err := r.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Watch subscribes to keyspace notifications for the store's prefix. The
// server must publish generic and string keyspace events; Watch turns them
// on when CONFIG is allowed and logs a warning when it is not.
func (r *Redis) Watch(ctx context.Context, onChange func()) error {
	r.enableKeyspaceEvents(ctx)

	pattern := fmt.Sprintf("__keyspace@%d__:%s*", r.client.Options().DB, r.prefix)
	pubsub := r.client.PSubscribe(ctx, pattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("%w: redis subscribe %s: %v", errors.ErrStoreUnavailable, pattern, err)
	}

	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				onChange()
			}
		}
	}()
	return nil
}

func (r *Redis) enableKeyspaceEvents(ctx context.Context) {
	current, err := r.client.ConfigGet(ctx, keyspaceEventsParam).Result()
	if err != nil {
		log.Warn().Err(err).Msg("cannot read redis keyspace event config")
		return
	}
	flags := current[keyspaceEventsParam]
	if strings.Contains(flags, "K") && (strings.Contains(flags, "A") || strings.Contains(flags, "g") && strings.Contains(flags, "$")) {
		return
	}
	if err := r.client.ConfigSet(ctx, keyspaceEventsParam, flags+"Kg$").Err(); err != nil {
		log.Warn().Err(err).Msg("cannot enable redis keyspace events, session changes from other consoles go unnoticed until the next tick")
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
