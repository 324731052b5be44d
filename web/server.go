// Package web serves the search page: sign-in and sign-out, searches against the session
// snapshot, checkbox toggles and result export.
package web

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sheetsearch/sheets-search/metrics"
	"github.com/sheetsearch/sheets-search/render"
	"github.com/sheetsearch/sheets-search/session"
	"github.com/sheetsearch/sheets-search/sheet"
)

// Broker is the subset of auth.Broker used by the handlers.
type Broker interface {
	RequestAccess(state string, token *oauth2.Token, forceConsent bool) string
	Callback(ctx context.Context, state string, query url.Values) (*oauth2.Token, error)
	Client(ctx context.Context, token *oauth2.Token) *http.Client
	Revoke(ctx context.Context, token *oauth2.Token) error
}

// Fetcher loads the snapshot for a signed in session.
type Fetcher interface {
	Fetch(ctx context.Context) (*sheet.Snapshot, error)
}

// FetcherFunc creates a Fetcher for an authorised HTTP client.
type FetcherFunc func(ctx context.Context, client *http.Client) (Fetcher, error)

type Options struct {
	PeopleCounts  []string
	Location      *time.Location
	SecureCookies bool
}

type Server struct {
	broker   Broker
	fetcher  FetcherFunc
	sessions *session.Manager
	gate     *session.Gate
	html     render.Renderer
	options  Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewServer(broker Broker, fetcher FetcherFunc, sessions *session.Manager, gate *session.Gate, logger *zap.Logger, options Options) (*Server, error) {
	html, err := render.NewHTML()
	if err != nil {
		return nil, err
	}

	if options.Location == nil {
		options.Location = time.Local
	}

	return &Server{
		broker:   broker,
		fetcher:  fetcher,
		sessions: sessions,
		gate:     gate,
		html:     html,
		options:  options,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Router builds the chi router. Every request gets a request ID, panic recovery and a canonical
// log line; the page routes are additionally bound to a browser session. Metrics are labelled
// by route group.
func (srv *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(recoverer(srv.logger))
	r.Use(wideEventMiddleware(srv.logger))

	r.With(metrics.Middleware(metrics.Public)).Get("/health", srv.health)
	r.With(metrics.Middleware(metrics.Public)).Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(metrics.Middleware(metrics.Session))
		r.Use(srv.sessionMiddleware)

		r.Get("/", srv.index)
		r.Get("/search", srv.search)
		r.Post("/rows/{row}", srv.toggle)
		r.Get("/export.xlsx", srv.export)

		r.Get("/auth/signin", srv.signin)
		r.Get("/auth/callback", srv.callback)
		r.Post("/auth/signout", srv.signout)
	})

	return r
}

func (srv *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
