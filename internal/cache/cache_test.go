package cache

import (
	"context"
	"testing"
	"time"
)

type memBackend struct {
	data map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{data: map[string][]byte{}}
}

func (m *memBackend) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	m.data[key] = value
	return true
}

func (m *memBackend) Delete(ctx context.Context, keys ...string) bool {
	for _, k := range keys {
		delete(m.data, k)
	}
	return true
}

type failingBackend struct{}

func (failingBackend) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (failingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return false
}
func (failingBackend) Delete(ctx context.Context, keys ...string) bool { return false }

type entry struct {
	Name string `json:"name"`
}

func TestCache_SetGet(t *testing.T) {
	c := New(newMemBackend(), TTLs{NamespaceAsset: time.Minute}, nil)
	ctx := context.Background()

	ok := c.Set(ctx, NamespaceAsset, Key(NamespaceAsset, "a1"), entry{Name: "dim_customers"})
	if !ok {
		t.Fatal("Set() = false, want true")
	}

	var got entry
	if !c.Get(ctx, NamespaceAsset, Key(NamespaceAsset, "a1"), &got) {
		t.Fatal("Get() = false, want true")
	}
	if got.Name != "dim_customers" {
		t.Errorf("got = %+v", got)
	}
}

func TestCache_NilBackendAlwaysMisses(t *testing.T) {
	c := New(nil, nil, nil)
	ctx := context.Background()

	if c.Set(ctx, NamespaceAsset, "k", entry{Name: "x"}) {
		t.Error("Set() on nil backend should return false")
	}
	var got entry
	if c.Get(ctx, NamespaceAsset, "k", &got) {
		t.Error("Get() on nil backend should return false")
	}
	if c.Delete(ctx, "k") {
		t.Error("Delete() on nil backend should return false")
	}
}

func TestCache_NilCachePointer(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	var got entry
	if c.Get(ctx, NamespaceAsset, "k", &got) {
		t.Error("Get() on nil *Cache should return false, not panic")
	}
	if c.Set(ctx, NamespaceAsset, "k", entry{}) {
		t.Error("Set() on nil *Cache should return false, not panic")
	}
}

func TestCache_FailingBackendDegradesSilently(t *testing.T) {
	c := New(failingBackend{}, TTLs{}, nil)
	ctx := context.Background()

	if c.Set(ctx, NamespaceContract, "k", entry{Name: "x"}) {
		t.Error("expected Set() to degrade to false")
	}
	var got entry
	if c.Get(ctx, NamespaceAsset, "k", &got) {
		t.Error("expected Get() to degrade to false")
	}
}

func TestCache_InvalidateContract(t *testing.T) {
	backend := newMemBackend()
	c := New(backend, TTLs{}, nil)
	ctx := context.Background()

	c.Set(ctx, NamespaceContract, Key(NamespaceContract, "c1"), entry{Name: "x"})
	c.Set(ctx, NamespaceAsset, Key(NamespaceAsset, "a1"), entry{Name: "y"})
	c.Set(ctx, NamespaceLineage, Key(NamespaceLineage, "a1"), entry{Name: "z"})

	c.InvalidateContract(ctx, "c1", "a1")

	var got entry
	if c.Get(ctx, NamespaceContract, Key(NamespaceContract, "c1"), &got) {
		t.Error("expected contract entry invalidated")
	}
	if c.Get(ctx, NamespaceAsset, Key(NamespaceAsset, "a1"), &got) {
		t.Error("expected asset entry invalidated")
	}
	if c.Get(ctx, NamespaceLineage, Key(NamespaceLineage, "a1"), &got) {
		t.Error("expected lineage entry invalidated")
	}
}

func TestDiffKey_StableAndOrderSensitive(t *testing.T) {
	a := []byte(`{"a":1}`)
	b := []byte(`{"b":2}`)

	k1 := DiffKey(a, b)
	k2 := DiffKey(a, b)
	if k1 != k2 {
		t.Error("DiffKey should be stable for the same pair")
	}

	k3 := DiffKey(b, a)
	if k1 == k3 {
		t.Error("DiffKey should depend on argument order")
	}
}
