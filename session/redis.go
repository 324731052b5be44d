package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

type RedisConfig struct {
	Addrs     []string
	Password  string
	KeyPrefix string
}

// RedisStore keeps sessions in Redis/Valkey so that they survive a restart of the server.
type RedisStore struct {
	client rueidis.Client
	prefix string
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis client (%w)", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

func NewRedisStoreWithClient(client rueidis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	cmd := r.client.B().Get().Key(r.key(id)).Build()

	v, err := r.client.Do(ctx, cmd).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get %v (%w)", id, err)
	}

	return v, nil
}

func (r *RedisStore) Put(ctx context.Context, id string, v []byte, ttl time.Duration) error {
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = r.client.B().Set().Key(r.key(id)).Value(string(v)).Ex(ttl).Build()
	} else {
		cmd = r.client.B().Set().Key(r.key(id)).Value(string(v)).Build()
	}

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set %v (%w)", id, err)
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	cmd := r.client.B().Del().Key(r.key(id)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis del %v (%w)", id, err)
	}

	return nil
}

func (r *RedisStore) Close() {
	r.client.Close()
}

func (r *RedisStore) key(id string) string {
	return r.prefix + "session:" + id
}
