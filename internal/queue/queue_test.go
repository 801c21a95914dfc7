package queue

import (
	"testing"
	"time"

	"github.com/thinkfashz/osart/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if err := client.EnqueuePromotionExpire(PromotionExpirePayload{PromotionID: 1}, time.Minute); err != nil {
		t.Fatalf("disabled enqueue should be noop, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestPromotionExpireTaskPayload(t *testing.T) {
	task, err := NewPromotionExpireTask(PromotionExpirePayload{PromotionID: 42})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskPromotionExpire {
		t.Fatalf("task type want %s got %s", TaskPromotionExpire, task.Type())
	}
	payload, err := ParsePromotionExpirePayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.PromotionID != 42 {
		t.Fatalf("promotion id want 42 got %d", payload.PromotionID)
	}
	if _, err := ParsePromotionExpirePayload([]byte(`{}`)); err == nil {
		t.Fatalf("expected missing promotion_id error")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("addr want redis:6380 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("concurrency want 10 got %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] != 6 || cfg.Queues[DefaultQueue] != 3 {
		t.Fatalf("unexpected queue weights: %v", cfg.Queues)
	}
	if cfg.ErrorHandler == nil || cfg.Logger == nil {
		t.Fatalf("error handler and logger should be set")
	}
	if opt.DialTimeout != defaultDialTimeout {
		t.Fatalf("dial timeout want %s got %s", defaultDialTimeout, opt.DialTimeout)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Concurrency: 3, Queues: map[string]int{"custom": 1}})
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr want default got %s", opt.Addr)
	}
	if cfg.Concurrency != 3 || cfg.Queues["custom"] != 1 || len(cfg.Queues) != 1 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
