package msglog

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisWriteTimeout = 2 * time.Second

// listPusher is the part of *redis.Client the sink uses.
type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisSink appends each record as a JSON string to a Redis list.
type RedisSink struct {
	client listPusher
	key    string
}

// NewRedisSink connects lazily to the server in cfg.
func NewRedisSink(cfg RedisConfig) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisSink(client, cfg.Key)
}

func newRedisSink(client listPusher, key string) *RedisSink {
	if key == emptyString {
		key = DefaultConfig().Redis.Key
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Write(rec *Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()
	return s.client.RPush(ctx, s.key, encodeRecord(rec)).Err()
}

// Key returns the list the sink appends to.
func (s *RedisSink) Key() string {
	return s.key
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
