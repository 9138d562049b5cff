package classify

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterSpacesCalls(t *testing.T) {
	r := NewRateLimiter(50)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := r.WaitTurn(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Fatalf("calls not spaced: %v", elapsed)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	r := NewRateLimiter(1)
	if err := r.WaitTurn(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.WaitTurn(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
