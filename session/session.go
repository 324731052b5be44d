// Package session holds the state of one browser session: the access token, the fetched
// snapshot and the checked rows. Sessions are created on first visit and reset on sign-out.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sheetsearch/sheets-search/auth"
	"github.com/sheetsearch/sheets-search/sheet"
	"github.com/sheetsearch/sheets-search/state"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrInvalid  = errors.New("invalid session")
)

type Session struct {
	ID         string          `json:"id"`
	OAuthState string          `json:"oauth-state,omitempty"`
	Token      *oauth2.Token   `json:"token,omitempty"`
	Snapshot   *sheet.Snapshot `json:"snapshot,omitempty"`
	Checked    *state.Store    `json:"checked"`
	SearchedAt time.Time       `json:"searched-at,omitzero"`
}

func New() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Checked: state.New(0),
	}
}

func (s *Session) IsAuthenticated() bool {
	return auth.IsAuthenticated(s.Token)
}

// Load installs a freshly fetched snapshot and sizes the checked rows to match it, all
// unchecked.
func (s *Session) Load(snapshot *sheet.Snapshot) {
	s.Snapshot = snapshot
	s.Checked = state.New(snapshot.Len())
}

// Reset discards the token, snapshot and checked rows. The session ID is retained.
func (s *Session) Reset() {
	s.OAuthState = ""
	s.Token = nil
	s.Snapshot = nil
	s.Checked = state.New(0)
	s.SearchedAt = time.Time{}
}

// NewOAuthState generates and records the state parameter for a consent request.
func (s *Session) NewOAuthState() string {
	s.OAuthState = uuid.NewString()

	return s.OAuthState
}
