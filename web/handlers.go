package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	logpkg "github.com/sheetsearch/sheets-search/logger"
	"github.com/sheetsearch/sheets-search/metrics"
	"github.com/sheetsearch/sheets-search/render"
	"github.com/sheetsearch/sheets-search/search"
	"github.com/sheetsearch/sheets-search/session"
	"github.com/sheetsearch/sheets-search/sheet"
	"github.com/sheetsearch/sheets-search/state"
)

func (srv *Server) index(w http.ResponseWriter, r *http.Request) {
	s, err := srv.sessions.Get(r.Context(), sessionID(r.Context()))
	if err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	srv.render(w, r, srv.page(s))
}

// search runs a query (or a people-count preset) against the session snapshot. Without a
// snapshot the page is drawn without a results table.
func (srv *Server) search(w http.ResponseWriter, r *http.Request) {
	page, ok := srv.query(w, r)
	if ok {
		srv.render(w, r, page)
	}
}

// export writes the results of a query as a workbook. The session is only read: an export is
// not a search and leaves the 'last searched' time as it is.
func (srv *Server) export(w http.ResponseWriter, r *http.Request) {
	s, err := srv.sessions.Get(r.Context(), sessionID(r.Context()))
	if err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	if s.Snapshot == nil || !s.IsAuthenticated() {
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		return
	}

	query, people, _ := terms(r)
	results := search.Search(s.Snapshot.Rows, query)

	page := srv.page(s)
	page.Query = query
	page.People = people
	page.Searched = true
	page.Rows = render.Rows(results, s.Checked)

	var b bytes.Buffer
	if err := (render.XLSX{Sheet: "Search"}).Render(&b, page); err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="search.xlsx"`)
	w.Write(b.Bytes())
}

// terms returns the query for a request: the search text, or the people-count preset when
// one is selected.
func terms(r *http.Request) (query string, people string, trigger string) {
	params := r.URL.Query()

	if params.Has("people") {
		people = strings.TrimSpace(params.Get("people"))
		return search.PeopleCount(people), people, "people"
	}

	return params.Get("q"), "", "query"
}

func (srv *Server) query(w http.ResponseWriter, r *http.Request) (render.Page, bool) {
	log := logpkg.FromContext(r.Context())
	query, people, trigger := terms(r)

	var page render.Page
	_, err := srv.sessions.Update(r.Context(), sessionID(r.Context()), func(s *session.Session) error {
		if s.Snapshot == nil || !s.IsAuthenticated() {
			log.Info("search without data", zap.String("query", query))
			page = srv.page(s)
			return nil
		}

		results := search.Search(s.Snapshot.Rows, query)
		s.SearchedAt = srv.now()

		page = srv.page(s)
		page.Query = query
		page.People = people
		page.Searched = true
		page.Rows = render.Rows(results, s.Checked)

		metrics.SearchesTotal.WithLabelValues(trigger).Inc()
		metrics.SearchResults.Observe(float64(len(results)))
		log.Debug("search", zap.String("query", query), zap.Int("results", len(results)))

		return nil
	})

	if err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return page, false
	}

	return page, true
}

// toggle records the checked state of a snapshot row.
func (srv *Server) toggle(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		srv.fail(w, r, http.StatusBadRequest, err)
		return
	}

	checked, err := strconv.ParseBool(r.FormValue("checked"))
	if err != nil {
		srv.fail(w, r, http.StatusBadRequest, err)
		return
	}

	_, err = srv.sessions.Update(r.Context(), sessionID(r.Context()), func(s *session.Session) error {
		return s.Checked.Set(row, checked)
	})

	switch {
	case errors.Is(err, state.ErrRowRange):
		srv.fail(w, r, http.StatusBadRequest, err)

	case err != nil:
		srv.fail(w, r, http.StatusInternalServerError, err)

	default:
		metrics.RowToggles.Inc()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (srv *Server) signin(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("prompt") == "consent"

	var redirect string
	_, err := srv.sessions.Update(r.Context(), sessionID(r.Context()), func(s *session.Session) error {
		redirect = srv.broker.RequestAccess(s.NewOAuthState(), s.Token, force)
		return nil
	})

	if err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// callback completes the consent flow and fetches the snapshot for the session. Authorisation
// errors abort the request. Fetch errors are logged and leave the session signed in without
// data.
func (srv *Server) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logpkg.FromContext(ctx)

	_, err := srv.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		token, err := srv.broker.Callback(ctx, s.OAuthState, r.URL.Query())
		metrics.ObserveAuth("signin", err)
		if err != nil {
			return err
		}

		s.OAuthState = ""
		s.Token = token

		fetcher, err := srv.fetcher(ctx, srv.broker.Client(ctx, token))
		if err != nil {
			log.Error("sheets client", zap.Error(err))
			return nil
		}

		start := srv.now()
		snapshot, err := fetcher.Fetch(ctx)
		metrics.ObserveFetch(start, err)

		switch {
		case errors.Is(err, sheet.ErrEmptyResult):
			log.Warn("No values found.")

		case err != nil:
			log.Error("fetch", zap.Error(err))

		default:
			s.Load(snapshot)
			log.Info("data loaded", zap.String("range", snapshot.Range), zap.Int("rows", snapshot.Len()))
		}

		return nil
	})

	if err != nil {
		srv.fail(w, r, http.StatusUnauthorized, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// signout revokes the token and resets the session. A failed revoke is logged, the local
// token is cleared regardless.
func (srv *Server) signout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logpkg.FromContext(ctx)

	_, err := srv.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		if s.IsAuthenticated() {
			err := srv.broker.Revoke(ctx, s.Token)
			metrics.ObserveAuth("signout", err)
			if err != nil {
				log.Warn("revoke", zap.Error(err))
			}
		}

		s.Reset()

		return nil
	})

	if err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (srv *Server) page(s *session.Session) render.Page {
	return render.Page{
		Authenticated: s.IsAuthenticated(),
		Ready:         srv.gate.Ready(),
		Loaded:        s.IsAuthenticated() && s.Snapshot != nil,
		PeopleCounts:  srv.options.PeopleCounts,
		SearchedAt:    render.Timestamp(s.SearchedAt, srv.options.Location),
	}
}

func (srv *Server) render(w http.ResponseWriter, r *http.Request, page render.Page) {
	var b bytes.Buffer
	if err := srv.html.Render(&b, page); err != nil {
		srv.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(b.Bytes())
}

// fail logs the error and answers with the bare status text.
func (srv *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := logpkg.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(http.StatusText(status), zap.Error(err))
	} else {
		log.Warn(http.StatusText(status), zap.Error(err))
	}

	http.Error(w, http.StatusText(status), status)
}
