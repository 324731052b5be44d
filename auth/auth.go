// Package auth wraps the Google OAuth2 consent, token exchange and revocation flow for a single
// consumer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const RevokeURL = "https://oauth2.googleapis.com/revoke"

var (
	ErrAuth    = errors.New("authorisation failed")
	ErrNoToken = errors.New("no access token")
)

// Broker builds consent URLs, exchanges authorisation codes for tokens and revokes tokens.
type Broker struct {
	config    *oauth2.Config
	revokeURL string
	client    *http.Client
}

// NewBroker creates a broker from the contents of a Google 'credentials.json' file. The
// redirect URL, if not empty, replaces the one in the credentials.
func NewBroker(credentials []byte, redirect string, scopes ...string) (*Broker, error) {
	config, err := google.ConfigFromJSON(credentials, scopes...)
	if err != nil {
		return nil, err
	}

	if redirect != "" {
		config.RedirectURL = redirect
	}

	return &Broker{
		config:    config,
		revokeURL: RevokeURL,
		client:    http.DefaultClient,
	}, nil
}

// NewBrokerFromFile is NewBroker for a credentials file path.
func NewBrokerFromFile(credentials string, redirect string, scopes ...string) (*Broker, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	return NewBroker(b, redirect, scopes...)
}

// WithRevokeURL replaces the Google revocation endpoint.
func (b *Broker) WithRevokeURL(u string) *Broker {
	b.revokeURL = u
	return b
}

// WithHTTPClient sets the client used for token exchange and revocation.
func (b *Broker) WithHTTPClient(client *http.Client) *Broker {
	b.client = client
	return b
}

func (b *Broker) Config() *oauth2.Config {
	return b.config
}

// IsAuthenticated returns true once an access token is held.
func IsAuthenticated(token *oauth2.Token) bool {
	return token != nil && token.AccessToken != ""
}

// RequestAccess returns the consent page URL. The user is asked for consent explicitly when
// forced or when no token is held, otherwise Google is allowed to skip the consent screen.
func (b *Broker) RequestAccess(state string, token *oauth2.Token, forceConsent bool) string {
	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}

	if forceConsent || !IsAuthenticated(token) {
		options = append(options, oauth2.SetAuthURLParam("prompt", "consent"))
	}

	return b.config.AuthCodeURL(state, options...)
}

// Callback completes a consent request from the redirect query parameters. Any error reported
// by the identity provider, a mismatched state or a failed exchange is returned as ErrAuth.
func (b *Broker) Callback(ctx context.Context, state string, query url.Values) (*oauth2.Token, error) {
	if e := query.Get("error"); e != "" {
		return nil, fmt.Errorf("%w: %v", ErrAuth, e)
	}

	if state == "" || query.Get("state") != state {
		return nil, fmt.Errorf("%w: invalid state", ErrAuth)
	}

	return b.Exchange(ctx, query.Get("code"))
}

// Exchange converts an authorisation code into a token.
func (b *Broker) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing authorisation code", ErrAuth)
	}

	token, err := b.config.Exchange(b.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	return token, nil
}

// Client returns an HTTP client that authorises requests with the token, refreshing it as
// required.
func (b *Broker) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return b.config.Client(b.context(ctx), token)
}

// Revoke invalidates the token with the identity provider. A nil or empty token is a no-op.
func (b *Broker) Revoke(ctx context.Context, token *oauth2.Token) error {
	if !IsAuthenticated(token) {
		return nil
	}

	form := url.Values{"token": {token.AccessToken}}
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	rq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := b.client.Do(rq)
	if err != nil {
		return fmt.Errorf("%w: revoke (%v)", ErrAuth, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("%w: revoke returned %v (%s)", ErrAuth, response.Status, strings.TrimSpace(string(body)))
	}

	return nil
}

func (b *Broker) context(ctx context.Context) context.Context {
	if b.client != nil && b.client != http.DefaultClient {
		return context.WithValue(ctx, oauth2.HTTPClient, b.client)
	}

	return ctx
}
