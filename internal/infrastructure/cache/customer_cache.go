// Package cache wraps the customer repository with a Redis read-through
// cache for the email lookup path, which every order creation and bulk
// import hits. All cache failures degrade to the underlying repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"crm-engine/internal/domain/customer"

	"github.com/redis/go-redis/v9"
)

const customerEmailKeyPrefix = "crm:customer:email:"

type CachingCustomerRepository struct {
	inner  customer.CustomerRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CachingCustomerRepository)(nil)

func NewCachingCustomerRepository(inner customer.CustomerRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachingCustomerRepository {
	return &CachingCustomerRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "CachingCustomerRepository"),
	}
}

func emailKey(email string) string {
	return customerEmailKeyPrefix + email
}

func (r *CachingCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	key := emailKey(email)

	payload, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var cust customer.Customer
		if err := json.Unmarshal(payload, &cust); err == nil {
			return &cust, nil
		}
		r.logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "Cache read failed, falling back to repository", "key", key, "error", err)
	}

	cust, err := r.inner.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cust); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
		}
	}

	return cust, nil
}

// Save invalidates the entry under the customer's current email. When an
// update changes the email, the entry under the old address is left to
// expire with its TTL.
func (r *CachingCustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if err := r.inner.Save(ctx, cust); err != nil {
		return err
	}
	r.invalidate(ctx, emailKey(cust.Email))
	return nil
}

func (r *CachingCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	cust, findErr := r.inner.FindByID(ctx, customerID)

	if err := r.inner.Delete(ctx, customerID); err != nil {
		return err
	}
	if findErr == nil {
		r.invalidate(ctx, emailKey(cust.Email))
	}
	return nil
}

// DeleteInactiveBefore can remove any number of customers, so the whole
// email keyspace is flushed rather than invalidated entry by entry.
func (r *CachingCustomerRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := r.inner.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.flushEmailKeys(ctx)
	}
	return deleted, nil
}

func (r *CachingCustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return r.inner.FindByID(ctx, customerID)
}

func (r *CachingCustomerRepository) FindAll(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	return r.inner.FindAll(ctx, filter)
}

func (r *CachingCustomerRepository) CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.inner.CountInactiveBefore(ctx, cutoff)
}

func (r *CachingCustomerRepository) CountAll(ctx context.Context) (int64, error) {
	return r.inner.CountAll(ctx)
}

func (r *CachingCustomerRepository) invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache invalidation failed", "key", key, "error", err)
	}
}

func (r *CachingCustomerRepository) flushEmailKeys(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, customerEmailKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache scan failed during flush", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache flush failed", "keys", len(keys), "error", err)
		return
	}
	r.logger.InfoContext(ctx, "Flushed customer email cache", "keys", len(keys))
}
