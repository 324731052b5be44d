package session

import (
	"sync"
	"testing"
)

func TestGate(t *testing.T) {
	calls := 0
	g := NewGate(func() { calls++ })

	if g.Ready() {
		t.Fatalf("Expected new gate to be closed")
	}

	g.OAuthReady()
	if g.Ready() || calls != 0 {
		t.Fatalf("Expected gate to remain closed with only OAuth ready")
	}

	g.SheetsReady()
	if !g.Ready() || calls != 1 {
		t.Fatalf("Expected gate to open once both are ready (ready:%v calls:%v)", g.Ready(), calls)
	}

	g.OAuthReady()
	g.SheetsReady()
	if calls != 1 {
		t.Errorf("Expected onReady to be invoked exactly once, got %v", calls)
	}
}

func TestGateInEitherOrder(t *testing.T) {
	calls := 0
	g := NewGate(func() { calls++ })

	g.SheetsReady()
	g.OAuthReady()

	if !g.Ready() || calls != 1 {
		t.Errorf("Expected gate to open (ready:%v calls:%v)", g.Ready(), calls)
	}
}

func TestGateConcurrentSignals(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	g := NewGate(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); g.OAuthReady() }()
		go func() { defer wg.Done(); g.SheetsReady() }()
	}

	wg.Wait()

	if calls != 1 {
		t.Errorf("Expected onReady to be invoked exactly once, got %v", calls)
	}
}

func TestGateWithoutCallback(t *testing.T) {
	g := NewGate(nil)

	g.OAuthReady()
	g.SheetsReady()

	if !g.Ready() {
		t.Errorf("Expected gate to open")
	}
}
