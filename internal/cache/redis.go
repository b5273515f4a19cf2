// Package cache holds the optional Redis layer in front of customer-status
// reads. The service degrades gracefully: with no Redis every call is a
// no-op and reads hit Postgres directly.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"pack-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	customerKeyPrefix = "customer:status:"
	customerTTL       = 5 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetCustomer returns a cached customer-status payload, if any.
func GetCustomer(ctx context.Context, name string) (*models.Customer, bool) {
	if client == nil {
		return nil, false
	}

	data, err := client.Get(ctx, customerKeyPrefix+name).Bytes()
	if err != nil {
		return nil, false
	}

	var customer models.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		client.Del(ctx, customerKeyPrefix+name)
		return nil, false
	}
	return &customer, true
}

// SetCustomer caches a customer-status payload for a short window.
func SetCustomer(ctx context.Context, customer *models.Customer) {
	if client == nil || customer == nil {
		return
	}
	data, err := json.Marshal(customer)
	if err != nil {
		return
	}
	client.Set(ctx, customerKeyPrefix+customer.Name, data, customerTTL)
}

// InvalidateCustomer drops a customer's cached status. Called after every
// lifecycle mutation so readers never see a stale stage.
func InvalidateCustomer(ctx context.Context, name string) {
	if client == nil {
		return
	}
	client.Del(ctx, customerKeyPrefix+name)
}
