package funnel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient builds a client and checks the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps each blob in a hash at "funnel:<session>:<step>" with
// fields "data" and "updated_at". Keys expire after ttl; zero means never.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func redisKey(sessionID, step string) string {
	return "funnel:" + sessionID + ":" + step
}

func (s *RedisStore) Save(ctx context.Context, sessionID, step string, data []byte) error {
	key := redisKey(sessionID, step)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "data", data, "updated_at", s.now().UTC().Format(time.RFC3339Nano))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, sessionID, step string) ([]byte, error) {
	data, err := s.client.HGet(ctx, redisKey(sessionID, step), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, step string) error {
	return s.client.Del(ctx, redisKey(sessionID, step)).Err()
}

// List scans for every key of step.
func (s *RedisStore) List(ctx context.Context, step string) ([]Entry, error) {
	suffix := ":" + step
	out := []Entry{}

	iter := s.client.Scan(ctx, 0, "funnel:*"+suffix, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		data, ok := fields["data"]
		if !ok {
			continue // expired between SCAN and HGETALL
		}
		updatedAt, _ := time.Parse(time.RFC3339Nano, fields["updated_at"])
		sessionID := strings.TrimSuffix(strings.TrimPrefix(key, "funnel:"), suffix)
		out = append(out, Entry{SessionID: sessionID, Step: step, Data: []byte(data), UpdatedAt: updatedAt})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
