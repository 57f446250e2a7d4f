package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/config"
)

// RedisClient defines the Redis operations the cache backend needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error

	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)

	Ping(ctx context.Context) error
	Close()
}

// Client implements RedisClient using rueidis.
type Client struct {
	client rueidis.Client
}

var _ RedisClient = (*Client)(nil)

// ClientOptions holds configuration for Redis client creation.
type ClientOptions struct {
	Host     string
	Port     int
	Password string // optional
	DB       int
}

func NewClient(opts ClientOptions) (*Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	return &Client{
		client: client,
	}, nil
}

func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	return NewClient(ClientOptions{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func (c *Client) Close() { c.client.Close() }

func (c *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	var cmd rueidis.Completed
	if expiration > 0 {
		seconds := int64(expiration.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		cmd = c.client.B().Set().Key(key).Value(value).ExSeconds(seconds).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(value).Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Get returns "" for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	cmd := c.client.B().Get().Key(key).Build()
	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		if rueidis.IsRedisNil(result.Error()) {
			return "", nil
		}
		return "", result.Error()
	}
	return result.ToString()
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := c.client.B().Del().Key(keys...).Build()
	return c.client.Do(ctx, cmd).Error()
}

// JSON helpers
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.Set(ctx, key, string(jsonData), expiration)
}

// GetJSON decodes the value at key into dest and reports whether it existed.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == "" {
		return false, nil
	}
	if err := sonic.UnmarshalString(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return true, nil
}

func (c *Client) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	return c.client.Do(ctx, cmd).Error()
}
