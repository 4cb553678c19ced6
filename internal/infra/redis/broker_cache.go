package redis

import (
	"context"
	"encoding/json"
	"time"
)

const brokerListKey = "processor:supported_brokers"

// BrokerCache caches the external processor's supported broker list so the
// wizard does not hit the processor on every page load.
type BrokerCache struct {
	client *Client
	ttl    time.Duration
}

func NewBrokerCache(client *Client, ttl time.Duration) *BrokerCache {
	return &BrokerCache{client: client, ttl: ttl}
}

func (c *BrokerCache) Get(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, brokerListKey)
	if err != nil {
		return nil, err
	}
	var brokers []string
	if err := json.Unmarshal([]byte(data), &brokers); err != nil {
		return nil, err
	}
	return brokers, nil
}

func (c *BrokerCache) Set(ctx context.Context, brokers []string) error {
	data, err := json.Marshal(brokers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, brokerListKey, data, c.ttl)
}
