package cache

import (
	"context"
	"testing"

	"github.com/thinkfashz/osart/internal/config"
)

func TestDisabledStore(t *testing.T) {
	store := NewStore(&config.RedisConfig{Enabled: false})
	if store.Enabled() {
		t.Fatalf("expected disabled store")
	}
	if store.Client() != nil {
		t.Fatalf("disabled store should not expose client")
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("disabled ping should be noop: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("disabled close should be noop: %v", err)
	}
}

func TestStoreKey(t *testing.T) {
	store := NewStore(&config.RedisConfig{Enabled: true, Prefix: " shop "})
	defer store.Close()

	if got := store.Key("rl", "price", " ", "1.2.3.4"); got != "shop:rl:price:1.2.3.4" {
		t.Fatalf("unexpected key: %s", got)
	}

	var nilStore *Store
	if got := nilStore.Key("a"); got != "osart:a" {
		t.Fatalf("nil store key want osart:a got %s", got)
	}
}
