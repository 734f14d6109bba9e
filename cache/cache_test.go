package cache

import (
	"context"
	"testing"
	"time"

	"github.com/constellation-run/constellation/types"
)

func TestMemoryBackend_SetGet(t *testing.T) {
	b := NewMemoryBackend(0)
	ctx := context.Background()

	if err := b.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	entry, ok, err := b.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(entry.Value) != "v" {
		t.Errorf("expected value 'v', got %q", entry.Value)
	}
}

func TestMemoryBackend_MissOnUnknownKey(t *testing.T) {
	b := NewMemoryBackend(0)
	_, ok, err := b.Get(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryBackend_ExpiryTreatedAsMiss(t *testing.T) {
	b := NewMemoryBackend(0)
	ctx := context.Background()
	if err := b.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	_, ok, err := b.Get(ctx, "k")
	if err != nil || ok {
		t.Fatalf("expected expired entry to miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryBackend_LRUEviction(t *testing.T) {
	b := NewMemoryBackend(2)
	ctx := context.Background()
	b.Set(ctx, "a", []byte("1"), 0)
	b.Set(ctx, "b", []byte("2"), 0)
	b.Get(ctx, "a") // touch a, making b the LRU entry
	b.Set(ctx, "c", []byte("3"), 0)

	if _, ok, _ := b.Get(ctx, "b"); ok {
		t.Error("expected b to be evicted as least-recently-used")
	}
	if _, ok, _ := b.Get(ctx, "a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok, _ := b.Get(ctx, "c"); !ok {
		t.Error("expected newly inserted c to be present")
	}
}

func TestMemoryBackend_DeleteAndClear(t *testing.T) {
	b := NewMemoryBackend(0)
	ctx := context.Background()
	b.Set(ctx, "k", []byte("v"), 0)

	deleted, err := b.Delete(ctx, "k")
	if err != nil || !deleted {
		t.Fatalf("expected delete to report true, got %v err=%v", deleted, err)
	}
	if again, _ := b.Delete(ctx, "k"); again {
		t.Error("expected second delete of the same key to report false")
	}

	b.Set(ctx, "x", []byte("1"), 0)
	b.Set(ctx, "y", []byte("2"), 0)
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, _ := b.Stats(ctx)
	if stats.Size != 0 {
		t.Errorf("expected empty backend after Clear, got size %d", stats.Size)
	}
}

func TestMemoryBackend_StatsCountsHitsMissesEvictions(t *testing.T) {
	b := NewMemoryBackend(1)
	ctx := context.Background()
	b.Set(ctx, "a", []byte("1"), 0)
	b.Get(ctx, "a")        // hit
	b.Get(ctx, "missing")  // miss
	b.Set(ctx, "b", []byte("2"), 0) // evicts a

	stats, err := b.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Hits != 1 || stats.Misses != 1 || stats.Evictions != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestContains(t *testing.T) {
	b := NewMemoryBackend(0)
	ctx := context.Background()
	b.Set(ctx, "k", []byte("v"), 0)

	ok, err := Contains(ctx, b, "k")
	if err != nil || !ok {
		t.Fatalf("expected Contains to be true, got %v err=%v", ok, err)
	}

	ok, err = Contains(ctx, b, "missing")
	if err != nil || ok {
		t.Fatalf("expected Contains to be false for missing key, got %v err=%v", ok, err)
	}
}

func TestGetOrCompute_ComputesOnceThenReusesCache(t *testing.T) {
	b := NewMemoryBackend(0)
	ctx := context.Background()
	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	v, hit, err := GetOrCompute(ctx, b, "k", 0, compute)
	if err != nil || hit {
		t.Fatalf("expected first call to miss and compute, got hit=%v err=%v", hit, err)
	}
	if string(v) != "computed" {
		t.Errorf("expected computed value, got %q", v)
	}

	v2, hit2, err := GetOrCompute(ctx, b, "k", 0, compute)
	if err != nil || !hit2 {
		t.Fatalf("expected second call to hit cache, got hit=%v err=%v", hit2, err)
	}
	if string(v2) != "computed" {
		t.Errorf("expected cached value on second call, got %q", v2)
	}
	if calls != 1 {
		t.Errorf("expected compute to run exactly once, ran %d times", calls)
	}
}

func TestKey_OrderIndependent(t *testing.T) {
	inputs1 := map[string]types.Value{"a": types.NewInt(1), "b": types.NewString("x")}
	inputs2 := map[string]types.Value{"b": types.NewString("x"), "a": types.NewInt(1)}

	if Key("mod", inputs1, "") != Key("mod", inputs2, "") {
		t.Error("expected Key to be independent of map insertion order")
	}
}

func TestKey_DiffersByModuleVersionOrInputs(t *testing.T) {
	base := Key("mod", map[string]types.Value{"a": types.NewInt(1)}, "")
	otherModule := Key("other", map[string]types.Value{"a": types.NewInt(1)}, "")
	otherVersion := Key("mod", map[string]types.Value{"a": types.NewInt(1)}, "v2")
	otherInput := Key("mod", map[string]types.Value{"a": types.NewInt(2)}, "")

	if base == otherModule || base == otherVersion || base == otherInput {
		t.Error("expected Key to vary with module name, version, and inputs")
	}
}

func TestRegistry_RegisterGetDefault(t *testing.T) {
	r := NewRegistry()
	mem := NewMemoryBackend(0)
	r.Register("memory", mem)

	got, ok := r.Get("")
	if !ok || got != Backend(mem) {
		t.Fatal("expected empty name to resolve to the first-registered default backend")
	}
	got2, ok := r.Get("memory")
	if !ok || got2 != Backend(mem) {
		t.Fatal("expected named lookup to return the same backend")
	}
}

func TestRegistry_UnregisterReassignsDefault(t *testing.T) {
	r := NewRegistry()
	r.Register("a", NewMemoryBackend(0))
	second := NewMemoryBackend(0)
	r.Register("b", second)

	r.Unregister("a")
	got, ok := r.Get("")
	if !ok || got != Backend(second) {
		t.Error("expected default to fall over to the next registered backend")
	}
}

func TestRegistry_List_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", NewMemoryBackend(0))
	r.Register("a", NewMemoryBackend(0))

	list := r.List()
	if len(list) != 2 || list[0] != "b" || list[1] != "a" {
		t.Errorf("expected registration order [b a], got %v", list)
	}
}

func TestRegistry_AllStatsAndClearAll(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	a := NewMemoryBackend(0)
	a.Set(ctx, "k", []byte("v"), 0)
	r.Register("a", a)

	stats, err := r.AllStats(ctx)
	if err != nil {
		t.Fatalf("AllStats: %v", err)
	}
	if stats["a"].Size != 1 {
		t.Errorf("expected backend a to report size 1, got %+v", stats["a"])
	}

	if err := r.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	stats, _ = r.AllStats(ctx)
	if stats["a"].Size != 0 {
		t.Errorf("expected backend a to be empty after ClearAll, got %+v", stats["a"])
	}
}

func TestEntry_Expired(t *testing.T) {
	now := time.Now()
	live := Entry{ExpiresAt: now.Add(time.Hour)}
	if live.Expired(now) {
		t.Error("expected future ExpiresAt to not be expired")
	}
	dead := Entry{ExpiresAt: now.Add(-time.Hour)}
	if !dead.Expired(now) {
		t.Error("expected past ExpiresAt to be expired")
	}
	forever := Entry{}
	if forever.Expired(now) {
		t.Error("expected zero ExpiresAt to never expire")
	}
}
