package config

import (
	"testing"
	"time"
)

func TestEnvDurDefaultAndOverride(t *testing.T) {
	if got := envDur("AVAILABILITY_CACHE_TTL", 30*time.Second); got != 30*time.Second {
		t.Fatalf("unset var: got %v, want 30s default", got)
	}
	t.Setenv("AVAILABILITY_CACHE_TTL", "2m")
	if got := envDur("AVAILABILITY_CACHE_TTL", 30*time.Second); got != 2*time.Minute {
		t.Fatalf("set var: got %v, want 2m", got)
	}
	t.Setenv("AVAILABILITY_CACHE_TTL", "not-a-duration")
	if got := envDur("AVAILABILITY_CACHE_TTL", 30*time.Second); got != 30*time.Second {
		t.Fatalf("malformed var: got %v, want 30s default", got)
	}
}
