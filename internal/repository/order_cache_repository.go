package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onboarding-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	pendingOrderTTL = 900 * time.Second
	customerIDTTL   = 24 * time.Hour
)

// OrderCache holds short-lived payment artifacts so a retry inside the window
// gets the same QR back instead of minting a new one at the gateway, plus a
// longer-lived gateway-customer-id cache for the employee flow. Both entries
// are pure optimizations; the database row and the gateway remain the source
// of truth.
type OrderCache interface {
	GetPendingOrder(ctx context.Context, email string) (*models.PendingOrder, error)
	PutPendingOrder(ctx context.Context, email string, order *models.PendingOrder) error
	GetCustomerID(ctx context.Context, email string) (string, error)
	PutCustomerID(ctx context.Context, email, customerID string) error
}

type redisOrderCache struct {
	client *redis.Client
}

func NewOrderCache(client *redis.Client) OrderCache {
	return &redisOrderCache{
		client: client,
	}
}

func (c *redisOrderCache) GetPendingOrder(ctx context.Context, email string) (*models.PendingOrder, error) {
	val, err := c.client.Get(ctx, pendingOrderKey(email)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading pending order cache: %w", err)
	}

	var order models.PendingOrder
	if err := json.Unmarshal(val, &order); err != nil {
		// A corrupt cache entry is a miss, not a failure.
		return nil, nil
	}
	return &order, nil
}

func (c *redisOrderCache) PutPendingOrder(ctx context.Context, email string, order *models.PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("error marshaling pending order: %w", err)
	}
	if err := c.client.Set(ctx, pendingOrderKey(email), data, pendingOrderTTL).Err(); err != nil {
		return fmt.Errorf("error writing pending order cache: %w", err)
	}
	return nil
}

func (c *redisOrderCache) GetCustomerID(ctx context.Context, email string) (string, error) {
	val, err := c.client.Get(ctx, customerKey(email)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading customer cache: %w", err)
	}
	return val, nil
}

func (c *redisOrderCache) PutCustomerID(ctx context.Context, email, customerID string) error {
	if err := c.client.Set(ctx, customerKey(email), customerID, customerIDTTL).Err(); err != nil {
		return fmt.Errorf("error writing customer cache: %w", err)
	}
	return nil
}

func pendingOrderKey(email string) string {
	return fmt.Sprintf("pending_order:%s", email)
}

func customerKey(email string) string {
	return fmt.Sprintf("rzp_customer:%s", email)
}
