// Package configstore persists and retrieves the tenant directory and brand
// catalog. Reads are two-tier: the Redis key-value store first, falling back
// to the JSON files bundled with the binary. The in-memory cache is populated
// on first read and only invalidated by an explicit Refresh, never by TTL.
package configstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/logger"
	"dealerbridge_backend/platform/normalize"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyTenants is the Redis key holding the tenant directory JSON blob.
	KeyTenants = "config:tenants"
	// KeyBrands is the Redis key holding the brand catalog JSON blob.
	KeyBrands = "config:brands"
)

//go:embed data/tenants.json
var embeddedTenants []byte

//go:embed data/brands.json
var embeddedBrands []byte

// Store is the configuration provider shared by all modules.
type Store struct {
	rdb redis.Cmdable
	log *logger.Logger

	mu      sync.RWMutex
	tenants Directory
	brands  BrandCatalog
	loaded  bool
}

// New creates a Store backed by the given Redis client. A nil client is
// allowed; the store then serves only the bundled configuration.
func New(rdb redis.Cmdable, log *logger.Logger) *Store {
	return &Store{rdb: rdb, log: log}
}

// Tenants returns the tenant directory, loading it on first use.
func (s *Store) Tenants(ctx context.Context) (Directory, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenants, nil
}

// Brands returns the brand catalog, loading it on first use.
func (s *Store) Brands(ctx context.Context) (BrandCatalog, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brands, nil
}

// Refresh discards the cache and reloads both blobs from the store.
func (s *Store) Refresh(ctx context.Context) error {
	tenants, brands, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tenants = tenants
	s.brands = brands
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// PutTenants replaces the tenant directory in the key-value store and cache.
// Dealer and brand lists must be unique within a tenant after normalization,
// otherwise resolution would depend on list order.
func (s *Store) PutTenants(ctx context.Context, dir Directory) error {
	if len(dir) == 0 {
		return fmt.Errorf("tenant directory must not be empty")
	}
	if err := validateDirectory(dir); err != nil {
		return err
	}
	if err := s.persist(ctx, KeyTenants, dir); err != nil {
		return err
	}

	s.mu.Lock()
	s.tenants = dir
	s.mu.Unlock()
	return nil
}

// PutBrands replaces the brand catalog in the key-value store and cache.
func (s *Store) PutBrands(ctx context.Context, catalog BrandCatalog) error {
	if len(catalog) == 0 {
		return fmt.Errorf("brand catalog must not be empty")
	}
	if err := s.persist(ctx, KeyBrands, catalog); err != nil {
		return err
	}

	s.mu.Lock()
	s.brands = catalog
	s.mu.Unlock()
	return nil
}

// validateDirectory rejects dealer or brand entries that collapse to the
// same normalized key within one tenant.
func validateDirectory(dir Directory) error {
	for _, name := range dir.Names() {
		record := dir[name]
		if dup := firstDuplicate(record.Dealers); dup != "" {
			return apperr.Validation(fmt.Sprintf("tenant %q: duplicate dealer %q", name, dup))
		}
		if dup := firstDuplicate(record.Brands); dup != "" {
			return apperr.Validation(fmt.Sprintf("tenant %q: duplicate brand %q", name, dup))
		}
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := normalize.Key(v)
		if _, ok := seen[key]; ok {
			return v
		}
		seen[key] = struct{}{}
	}
	return ""
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *Store) load(ctx context.Context) (Directory, BrandCatalog, error) {
	var tenants Directory
	if err := s.fetch(ctx, KeyTenants, embeddedTenants, &tenants); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", KeyTenants, err)
	}

	var brands BrandCatalog
	if err := s.fetch(ctx, KeyBrands, embeddedBrands, &brands); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", KeyBrands, err)
	}

	return tenants, brands, nil
}

// fetch reads a JSON blob from Redis, falling back to the bundled copy when
// the key is absent or the store is unreachable.
func (s *Store) fetch(ctx context.Context, key string, fallback []byte, out interface{}) error {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			return json.Unmarshal([]byte(raw), out)
		case errors.Is(err, redis.Nil):
			// fall through to bundled config
		default:
			if s.log != nil {
				s.log.Warn("config store read failed, using bundled config", "key", key, "error", err.Error())
			}
		}
	}

	return json.Unmarshal(fallback, out)
}

func (s *Store) persist(ctx context.Context, key string, value interface{}) error {
	if s.rdb == nil {
		return fmt.Errorf("config store is read-only: no key-value store configured")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
