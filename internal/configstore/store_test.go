package configstore

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"dealerbridge_backend/platform/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, nil), mr
}

func TestTenantsFallsBackToBundledConfig(t *testing.T) {
	store, _ := newTestStore(t)

	dir, err := store.Tenants(context.Background())
	if err != nil {
		t.Fatalf("Tenants: %v", err)
	}
	if _, ok := dir["ACME MOTORS"]; !ok {
		t.Fatal("bundled directory should contain ACME MOTORS")
	}
}

func TestTenantsPrefersStoreOverBundled(t *testing.T) {
	store, mr := newTestStore(t)

	dir := Directory{
		"OVERRIDE SA": {Brands: []string{"KTM"}, Dealers: []string{"Override Dealer"}},
	}
	raw, _ := json.Marshal(dir)
	mr.Set(KeyTenants, string(raw))

	got, err := store.Tenants(context.Background())
	if err != nil {
		t.Fatalf("Tenants: %v", err)
	}
	if _, ok := got["OVERRIDE SA"]; !ok {
		t.Fatal("store value should win over bundled config")
	}
	if _, ok := got["ACME MOTORS"]; ok {
		t.Fatal("bundled config should not leak through when the store has the key")
	}
}

func TestCacheIsOnlyInvalidatedByRefresh(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Tenants(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	dir := Directory{"LATE SA": {Dealers: []string{"Late Dealer"}}}
	raw, _ := json.Marshal(dir)
	mr.Set(KeyTenants, string(raw))

	got, err := store.Tenants(ctx)
	if err != nil {
		t.Fatalf("Tenants: %v", err)
	}
	if _, ok := got["LATE SA"]; ok {
		t.Fatal("cached read should not see writes made after the first load")
	}

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got, err = store.Tenants(ctx)
	if err != nil {
		t.Fatalf("Tenants after refresh: %v", err)
	}
	if _, ok := got["LATE SA"]; !ok {
		t.Fatal("refresh should pick up the new directory")
	}
}

func TestPutTenantsPersistsAndCaches(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	dir := Directory{"NUEVA SA": {Brands: []string{"Honda"}, Dealers: []string{"Nueva Centro"}}}
	if err := store.PutTenants(ctx, dir); err != nil {
		t.Fatalf("PutTenants: %v", err)
	}

	if !mr.Exists(KeyTenants) {
		t.Fatal("PutTenants should write the Redis key")
	}

	got, err := store.Tenants(ctx)
	if err != nil {
		t.Fatalf("Tenants: %v", err)
	}
	if _, ok := got["NUEVA SA"]; !ok {
		t.Fatal("cache should reflect the written directory")
	}
}

func TestPutTenantsRejectsEmptyDirectory(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.PutTenants(context.Background(), Directory{}); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestPutTenantsRejectsNormalizedDuplicates(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		dir  Directory
	}{
		{
			name: "duplicate dealer differing only in case",
			dir:  Directory{"ACME SA": {Dealers: []string{"Acme Norte", "ACME NORTE"}}},
		},
		{
			name: "duplicate brand differing only in accents",
			dir:  Directory{"ACME SA": {Dealers: []string{"Acme Norte"}, Brands: []string{"Citroën", "Citroen"}}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.PutTenants(ctx, tc.dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
			}
			if !strings.Contains(err.Error(), "ACME SA") {
				t.Fatalf("error %q should name the tenant", err.Error())
			}
			if mr.Exists(KeyTenants) {
				t.Fatal("rejected directory must not be persisted")
			}
		})
	}
}

func TestDirectoryNamesAreSorted(t *testing.T) {
	dir := Directory{"ZETA": {}, "ALFA": {}, "MEDIA": {}}
	names := dir.Names()
	want := []string{"ALFA", "MEDIA", "ZETA"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}
