// Package api serves stored dictionary words over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rbhz/voca/app/db"
)

type Server struct {
	router chi.Router
}

func (s *Server) Run(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) setJsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// NewServer creates API server. Users listed in admins may update words.
func NewServer(storage db.Storage, tgToken string, jwtSecret string, admins []int64) *Server {
	s := &Server{}
	dict := dictionaryService{storage: storage}
	auth := authService{telegramToken: tgToken, jwtSecret: []byte(jwtSecret), admins: make(map[int64]struct{})}
	for _, id := range admins {
		auth.admins[id] = struct{}{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.setJsonContentType)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/telegram", auth.TelegramRedirectHandler)
		})
		r.Route("/dictionary", func(r chi.Router) {
			r.Use(auth.UserCtx)
			r.Get("/", dict.GetDictionary)
			r.Get("/word/{word}", dict.GetWord)
			r.Post("/word/{word}", dict.UpdateWord)
		})
	})

	s.router = r
	return s
}
