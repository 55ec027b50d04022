package config

import (
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreDriver != StoreMongo || cfg.City != "antalya" || cfg.TopK != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.EmbeddingModel != "hashing:384" || cfg.EmbeddingBatchSize != 16 {
		t.Fatalf("unexpected embedding defaults: %s/%d", cfg.EmbeddingModel, cfg.EmbeddingBatchSize)
	}
	if cfg.StoreTimeout != 5*time.Second || cfg.GenerationTimeout != 20*time.Second {
		t.Fatalf("unexpected timeouts: %s %s", cfg.StoreTimeout, cfg.GenerationTimeout)
	}
	if cfg.TrustProxy || cfg.ChatRateIdle != 10*time.Minute || cfg.LimiterSweepSpec == "" {
		t.Fatalf("unexpected rate limit defaults: %v %s %q", cfg.TrustProxy, cfg.ChatRateIdle, cfg.LimiterSweepSpec)
	}
	if cfg.APIAddr() != "0.0.0.0:5000" {
		t.Fatalf("addr = %s", cfg.APIAddr())
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("TOP_K", "3")
	t.Setenv("ADMIN_USER", "42")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("LLM_PROVIDER", "none")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreDriver != StoreSQLite || cfg.TopK != 3 || cfg.AdminUserID != 42 || cfg.LLMProvider != ProviderNone {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.StoreTimeout != 250*time.Millisecond {
		t.Fatalf("timeout = %s", cfg.StoreTimeout)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOP_K", "0")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for TOP_K=0")
	}
	t.Setenv("TOP_K", "abc")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLocation_Fallback(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	if _, off := time.Date(2026, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone(); off != 3*60*60 {
		t.Fatalf("offset = %d", off)
	}
}
