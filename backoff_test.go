package queuectl

import (
	"testing"
	"time"
)

func TestBackoffCounterNext(t *testing.T) {
	bc := backoffCounter{maxRetries: 3, base: 2}

	cases := []struct {
		attempts  uint32
		wantDelay time.Duration
		wantOK    bool
	}{
		{0, time.Second, true},
		{1, 2 * time.Second, true},
		{2, 4 * time.Second, true},
		{3, 0, false},
		{4, 0, false},
	}

	for _, c := range cases {
		delay, ok := bc.next(c.attempts)
		if ok != c.wantOK {
			t.Fatalf("attempts=%d: expected ok=%v, got %v", c.attempts, c.wantOK, ok)
		}
		if ok && delay != c.wantDelay {
			t.Fatalf("attempts=%d: expected delay %v, got %v", c.attempts, c.wantDelay, delay)
		}
	}
}

func TestBackoffCounterBaseOne(t *testing.T) {
	bc := backoffCounter{maxRetries: 5, base: 1}
	delay, ok := bc.next(4)
	if !ok {
		t.Fatal("expected retry to still be allowed")
	}
	if delay != time.Second {
		t.Fatalf("expected constant 1s delay with base 1, got %v", delay)
	}
}
