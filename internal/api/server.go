package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
	"github.com/utakatalp/championship-manager/internal/store"
	"golang.org/x/time/rate"
)

// Server exposes a catalog of championships over HTTP. Every request runs
// under one lock: results are applied and reversed in place, so two plays of
// the same round must never interleave.
type Server struct {
	mu      sync.Mutex
	catalog *league.Catalog
	store   store.Store
	policy  league.ScoringPolicy
	limiter *rate.Limiter
	router  *mux.Router
}

func NewServer(catalog *league.Catalog, st store.Store, policy league.ScoringPolicy, limiter *rate.Limiter) *Server {
	s := &Server{
		catalog: catalog,
		store:   st,
		policy:  policy,
		limiter: limiter,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.logRequests, s.rateLimit, s.serialize)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logging.Log.Infof("no route for %s %s", req.Method, req.URL.Path)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "page not found"})
	})

	r.HandleFunc("/leagues", s.listLeagues).Methods(http.MethodGet)
	r.HandleFunc("/leagues", s.createLeague).Methods(http.MethodPost)

	l := r.PathPrefix("/leagues/{id:[0-9]+}").Subrouter()
	l.HandleFunc("/teams", s.listTeams).Methods(http.MethodGet)
	l.HandleFunc("/teams", s.promoteTeam).Methods(http.MethodPost)
	l.HandleFunc("/teams/{name}", s.findTeam).Methods(http.MethodGet)
	l.HandleFunc("/teams/{name}", s.relegateTeam).Methods(http.MethodDelete)
	l.HandleFunc("/fixtures", s.generateFixtures).Methods(http.MethodPost)
	l.HandleFunc("/fixtures", s.listFixtures).Methods(http.MethodGet)
	l.HandleFunc("/rounds/{round:[0-9]+}", s.getRound).Methods(http.MethodGet)
	l.HandleFunc("/rounds/{round:[0-9]+}/play", s.playRound).Methods(http.MethodPost)
	l.HandleFunc("/rounds/{round:[0-9]+}/matches/{match:[0-9]+}", s.recordResult).Methods(http.MethodPut)
	l.HandleFunc("/standings", s.standings).Methods(http.MethodGet)
	l.HandleFunc("/standings.csv", s.standingsCSV).Methods(http.MethodGet)
	l.HandleFunc("/standings/{name}", s.position).Methods(http.MethodGet)
	l.HandleFunc("/comparison", s.comparison).Methods(http.MethodGet)
	l.HandleFunc("/reset", s.reset).Methods(http.MethodPost)

	r.HandleFunc("/save", s.save).Methods(http.MethodPost)
	r.HandleFunc("/load", s.load).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Log.Infof("starting server on http://%s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// rateLimit throttles requests that change state.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && s.limiter != nil && !s.limiter.Allow() {
			logging.Log.Warnf("rate limited %s %s", r.Method, r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Log.Debugf("%s %s in %s", r.Method, r.URL.Path, time.Since(start))
	})
}
