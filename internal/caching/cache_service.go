package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
)

type CacheService interface {
	// Medicine caching
	GetMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) (*models.Medicine, error)
	SetMedicine(ctx context.Context, tenantID uuid.UUID, medicine *models.Medicine, ttl time.Duration) error
	DeleteMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) error

	// Tenant caching (subdomain lookup is on the hot path of every stream open)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	SetTenantBySubdomain(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenantBySubdomain(ctx context.Context, subdomain string) error

	// Report caching
	GetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string) (*models.SalesSummary, error)
	SetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string, summary *models.SalesSummary, ttl time.Duration) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient dials Redis and logs a warning when the initial ping fails.
// The service stays up with a degraded cache rather than refusing to boot.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) (*models.Medicine, error) {
	key := fmt.Sprintf("pharmacy:medicine:%s:%s", tenantID.String(), medicineID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var medicine models.Medicine
	if err := json.Unmarshal(data, &medicine); err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *redisCacheService) SetMedicine(ctx context.Context, tenantID uuid.UUID, medicine *models.Medicine, ttl time.Duration) error {
	key := fmt.Sprintf("pharmacy:medicine:%s:%s", tenantID.String(), medicine.ID.String())
	data, err := json.Marshal(medicine)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) error {
	key := fmt.Sprintf("pharmacy:medicine:%s:%s", tenantID.String(), medicineID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	key := fmt.Sprintf("pharmacy:tenant:subdomain:%s", subdomain)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var tenant models.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *redisCacheService) SetTenantBySubdomain(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	key := fmt.Sprintf("pharmacy:tenant:subdomain:%s", tenant.Subdomain)
	data, err := json.Marshal(tenant)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteTenantBySubdomain(ctx context.Context, subdomain string) error {
	key := fmt.Sprintf("pharmacy:tenant:subdomain:%s", subdomain)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string) (*models.SalesSummary, error) {
	key := fmt.Sprintf("pharmacy:report:sales:%s:%s", tenantID.String(), day)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var summary models.SalesSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string, summary *models.SalesSummary, ttl time.Duration) error {
	key := fmt.Sprintf("pharmacy:report:sales:%s:%s", tenantID.String(), day)
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("pharmacy:*%s*", tenantID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
