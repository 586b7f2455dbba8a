package signal

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow("alice") {
			t.Fatalf("send %d unexpectedly blocked", i)
		}
	}
	if rl.Allow("alice") {
		t.Fatal("expected the 4th send blocked")
	}
	// Other identities have their own window.
	if !rl.Allow("bob") {
		t.Fatal("bob should not share alice's window")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("alice") {
		t.Fatal("expected the window to slide open again")
	}
}
