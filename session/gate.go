package session

import (
	"sync"
)

// Gate joins the two initialisation signals that must both have completed before sign-in can
// be offered: the OAuth2 client configuration and the Sheets API client.
type Gate struct {
	mu      sync.Mutex
	oauth   bool
	sheets  bool
	onReady func()
}

// NewGate creates a gate that invokes onReady once, when both signals have been received.
func NewGate(onReady func()) *Gate {
	return &Gate{
		onReady: onReady,
	}
}

func (g *Gate) OAuthReady() {
	g.mu.Lock()
	g.oauth = true
	g.mu.Unlock()

	g.maybeReady()
}

func (g *Gate) SheetsReady() {
	g.mu.Lock()
	g.sheets = true
	g.mu.Unlock()

	g.maybeReady()
}

func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.oauth && g.sheets
}

func (g *Gate) maybeReady() {
	g.mu.Lock()
	ready := g.oauth && g.sheets && g.onReady != nil
	f := g.onReady
	if ready {
		g.onReady = nil
	}
	g.mu.Unlock()

	if ready {
		f()
	}
}
