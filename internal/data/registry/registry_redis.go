package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the keys used by the Redis store.
const DefaultRedisPrefix = "flakeid:"

// Redis stores node assignments in a Redis hash and allocates nodes with INCR.
// A node allocated by a process that loses the race for a host is skipped,
// never reused.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis client. An empty prefix uses DefaultRedisPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (d *Redis) nodesKey() string { return d.prefix + "nodes" }
func (d *Redis) seqKey() string   { return d.prefix + "node_seq" }

// Assign returns the node of host, allocating the next free one on first use.
func (d *Redis) Assign(ctx context.Context, host string) (*Assignment, error) {
	a, err := create(host)
	if err != nil {
		return nil, err
	}

	if found, err := d.Find(ctx, host); err == nil || !IsNotFound(err) {
		return found, err
	}

	n, err := d.client.Incr(ctx, d.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate node in redis: %w", err)
	}
	a.Node = uint64(n)
	a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	if _, err := checkNode(a); err != nil {
		return nil, err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	if _, err := d.client.HSetNX(ctx, d.nodesKey(), host, data).Result(); err != nil {
		return nil, fmt.Errorf("store node assignment in redis: %w", err)
	}

	// read back: a concurrent Assign may have stored its assignment first.
	return d.Find(ctx, host)
}

// Find returns the node assignment of host.
func (d *Redis) Find(ctx context.Context, host string) (*Assignment, error) {
	data, err := d.client.HGet(ctx, d.nodesKey(), host).Bytes()
	if err == redis.Nil {
		return nil, Error{missingHost: host}
	}
	if err != nil {
		return nil, fmt.Errorf("find node assignment in redis: %w", err)
	}

	a := new(Assignment)
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("decode node assignment of %s: %w", host, err)
	}
	return checkNode(a)
}
