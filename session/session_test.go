package session

import (
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sheetsearch/sheets-search/sheet"
)

func TestNew(t *testing.T) {
	s := New()

	if s.ID == "" {
		t.Errorf("Expected session ID")
	}

	if s.IsAuthenticated() {
		t.Errorf("Expected new session to be unauthenticated")
	}

	if s.Checked == nil || s.Checked.Len() != 0 {
		t.Errorf("Expected empty row state, got %v", s.Checked)
	}

	if New().ID == s.ID {
		t.Errorf("Expected unique session IDs")
	}
}

func TestLoad(t *testing.T) {
	s := New()
	s.Load(&sheet.Snapshot{
		Rows: [][]any{
			{"Alice", "3人"},
			{"Bob", "5人"},
			{"Carol"},
		},
	})

	if s.Checked.Len() != 3 {
		t.Fatalf("Incorrect row state size - expected:%v, got:%v", 3, s.Checked.Len())
	}

	for row := 0; row < 3; row++ {
		if s.Checked.Checked(row) {
			t.Errorf("Expected row %v to be unchecked after load", row)
		}
	}
}

func TestReset(t *testing.T) {
	s := New()
	id := s.ID

	s.Token = &oauth2.Token{AccessToken: "ya29.token"}
	s.NewOAuthState()
	s.Load(&sheet.Snapshot{Rows: [][]any{{"Alice"}}})
	s.Checked.Set(0, true)
	s.SearchedAt = time.Now()

	s.Reset()

	if s.ID != id {
		t.Errorf("Expected reset to retain session ID")
	}

	if s.IsAuthenticated() || s.Snapshot != nil || s.OAuthState != "" || !s.SearchedAt.IsZero() {
		t.Errorf("Expected reset session, got %+v", s)
	}

	if s.Checked.Len() != 0 {
		t.Errorf("Expected reset to clear row state, got %v rows", s.Checked.Len())
	}
}

func TestNewOAuthState(t *testing.T) {
	s := New()

	state := s.NewOAuthState()
	if state == "" || s.OAuthState != state {
		t.Errorf("Expected OAuth state to be recorded - expected:%v, got:%v", state, s.OAuthState)
	}

	if s.NewOAuthState() == state {
		t.Errorf("Expected a new OAuth state for each request")
	}
}
