package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLimiter_RetryAfterAndReset(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/api/export", Method: "POST", Limit: 6, Window: time.Minute, Burst: 1},
		},
	})
	defer limiter.Stop()

	allowed, info := limiter.Allow("10.0.0.1", "/api/export", "POST")
	if !allowed {
		t.Fatal("Expected first export to be allowed")
	}
	if info.ResetTime.Before(time.Now()) {
		t.Error("Reset time should be in the future after consuming the burst")
	}

	allowed, info = limiter.Allow("10.0.0.1", "/api/export", "POST")
	if allowed {
		t.Fatal("Expected second export to be denied")
	}
	// One token every 10 seconds.
	if info.RetryAfter <= 0 || info.RetryAfter > 10*time.Second {
		t.Errorf("Expected retry after in (0, 10s], got %v", info.RetryAfter)
	}

	// Another client has its own budget.
	if allowed, _ := limiter.Allow("10.0.0.2", "/api/export", "POST"); !allowed {
		t.Error("Expected other client to be allowed")
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Whitelisted IP should always be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Blacklisted IP should always be denied
	allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	config := &Config{
		Enabled: false,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// When disabled, all requests should be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/api/export", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Test endpoint-specific limit (burst allows 5 immediately)
	for i := 0; i < 5; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/api/export", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	// 6th request should be denied (limit reached)
	allowed, rateInfo := limiter.Allow(clientID, "/api/export", "POST")
	if allowed {
		t.Error("Expected 6th request to be denied")
	}
	if rateInfo.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
	}

	// Different endpoint should use default limit
	allowed, rateInfo = limiter.Allow(clientID, "/other", "GET")
	if !allowed {
		t.Error("Expected different endpoint to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow(clientID, endpoint, method)
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Should have allowed exactly 100 requests
	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	config := &Config{
		Enabled:         true,
		DefaultLimit:    10,
		DefaultWindow:   time.Minute,
		CleanupInterval: 100 * time.Millisecond,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Create buckets for multiple clients
	for i := 0; i < 10; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		allowed, _ := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request from %s to be allowed", clientID)
		}
	}

	// Wait for cleanup
	time.Sleep(150 * time.Millisecond)

	// Access buckets to update last access time
	for i := 0; i < 5; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		allowed, _ := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request from %s to be allowed", clientID)
		}
	}

	// Wait for cleanup again
	time.Sleep(150 * time.Millisecond)

	// Buckets should still exist (we accessed them recently)
	// This is a basic test - full cleanup testing would require more time
	// Verify that accessed buckets still work
	for i := 0; i < 5; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		allowed, _ := limiter.Allow(clientID, "/test", "GET")
		if !allowed {
			t.Errorf("Expected request from %s to still be allowed after cleanup", clientID)
		}
	}
}

func TestLimiter_Burst(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/burst", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow burst of 5 requests immediately
	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(clientID, "/burst", "POST")
		if !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}

	// 6th request should be denied (burst exhausted, no refill yet)
	allowed, _ := limiter.Allow(clientID, "/burst", "POST")
	if allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if limiter == nil {
		t.Error("Expected limiter to be created with nil config")
	}

	// Should use defaults
	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}


func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	limiter.Allow("127.0.0.1", "/test", "GET")
	limiter.cleanupBuckets(time.Now().Add(time.Minute))

	limiter.mu.Lock()
	n := len(limiter.buckets)
	limiter.mu.Unlock()
	if n != 0 {
		t.Errorf("Expected stale buckets to be removed, %d left", n)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(10)

	if cfg := MatchEndpoint("/health", "GET", configs); cfg == nil || cfg.Limit != 0 {
		t.Error("Expected health check to be unlimited")
	}
	if cfg := MatchEndpoint("/api/events", "GET", configs); cfg == nil || cfg.Limit != 0 {
		t.Error("Expected event stream to be unlimited")
	}
	if cfg := MatchEndpoint("/api/export", "POST", configs); cfg == nil || cfg.Limit != 10 {
		t.Error("Expected export to use the export budget")
	}
	if cfg := MatchEndpoint("/api/cv/experiences/abc", "DELETE", configs); cfg == nil || cfg.Path != "/api/cv/" {
		t.Error("Expected prefix match on /api/cv/")
	}
	if cfg := MatchEndpoint("/api/cv", "GET", configs); cfg != nil {
		t.Error("Expected reads to fall back to the default limit")
	}
	if cfg := MatchEndpoint("/api/cv/languages/2/move", "POST", configs); cfg == nil || cfg.Limit != 600 {
		t.Error("Expected the move pattern to win over the /api/cv/ prefix")
	}
	if cfg := MatchEndpoint("/api/cv/languages/move", "POST", configs); cfg == nil || cfg.Path != "/api/cv/" {
		t.Error("Expected a short path to fall back to the prefix")
	}
	if cfg := MatchEndpoint("/api/events", "POST", configs); cfg != nil {
		t.Error("Expected only GET on the event stream to be unlimited")
	}
}

func TestMatchEndpoint_LongestPrefixWins(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/", Method: "GET", Limit: 1},
		{Path: "/api/cv/", Method: "GET", Limit: 2},
	}

	if cfg := MatchEndpoint("/api/cv/skills", "GET", configs); cfg == nil || cfg.Limit != 2 {
		t.Error("Expected the longer prefix to win")
	}
	if cfg := MatchEndpoint("/api/templates", "GET", configs); cfg == nil || cfg.Limit != 1 {
		t.Error("Expected the shorter prefix to match outside /api/cv/")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_EXPORT_LIMIT", "3")

	cfg := LoadConfig(600, 10)
	if !cfg.Enabled {
		t.Fatal("Expected rate limiting to be enabled by default")
	}
	if cfg.DefaultLimit != 600 {
		t.Errorf("Expected default limit 600, got %d", cfg.DefaultLimit)
	}
	if !cfg.Whitelist["10.0.0.2"] {
		t.Error("Expected whitelist to be parsed")
	}
	if got := MatchEndpoint("/api/export", "POST", cfg.EndpointConfigs); got == nil || got.Limit != 3 {
		t.Error("Expected export limit from the environment")
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if LoadConfig(600, 10).Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}
