package http

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/event-checkin/internal/metrics"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Attendees  *AttendeeHandler
	Checkin    *CheckinHandler
	Stats      *StatsHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Attendees != nil {
		mux.HandleFunc("/attendees", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Attendees.List(w, r)
			case http.MethodPost:
				cfg.Attendees.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/attendees/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/attendees/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithAttendeeID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Attendees.Get(w, r)
			case http.MethodPatch:
				cfg.Attendees.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPatch)
			}
		})
		mux.HandleFunc("/scans", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Attendees.AddScan(w, r)
		})
	}

	if cfg.Checkin != nil {
		postOnly := func(handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				handler(w, r)
			}
		}
		mux.HandleFunc("/checkin/sign-in", postOnly(cfg.Checkin.SignIn))
		mux.HandleFunc("/checkin/sign-out", postOnly(cfg.Checkin.SignOut))
		mux.HandleFunc("/checkin/events/sign-in", postOnly(cfg.Checkin.EventSignIn))
		mux.HandleFunc("/checkin/events/sign-out", postOnly(cfg.Checkin.EventSignOut))
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Checkin.ListEvents(w, r)
		})
	}

	if cfg.Stats != nil {
		getOnly := func(handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				handler(w, r)
			}
		}
		mux.HandleFunc("/stats/skills", getOnly(cfg.Stats.SkillFrequencies))
		mux.HandleFunc("/stats/scans", getOnly(cfg.Stats.ScanFrequencies))
		mux.HandleFunc("/stats/sign-ins", getOnly(cfg.Stats.SignInHistogram))
	}

	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
