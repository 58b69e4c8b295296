package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-checkin/internal/application"
	"github.com/example/event-checkin/internal/config"
	httptransport "github.com/example/event-checkin/internal/http"
	"github.com/example/event-checkin/internal/identity"
	"github.com/example/event-checkin/internal/logging"
	"github.com/example/event-checkin/internal/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		fallback.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := func() string { return uuid.NewString() }
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	attendeeRepo := sqlite.NewAttendeeRepository(pool)
	eventRepo := sqlite.NewEventRepository(pool)
	statsRepo := sqlite.NewStatsRepository(pool)
	staffRepo := sqlite.NewStaffRepository(pool)

	attendeeService := application.NewAttendeeService(attendeeRepo, identity.NewIssuer(nil), idGenerator, now, logger)
	checkinService := application.NewCheckinService(attendeeRepo, eventRepo, eventRepo, now, logger)
	statsService := application.NewStatsService(statsRepo, logger)
	authService := application.NewAuthService(staffRepo, staffRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	if err := authService.EnsureStaff(ctx, cfg.StaffEmail, cfg.StaffPassword, "Front Desk", idGenerator); err != nil {
		logger.Error("failed to bootstrap staff account", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Attendees: httptransport.NewAttendeeHandler(attendeeService, logger),
		Checkin:   httptransport.NewCheckinHandler(checkinService, logger),
		Stats:     httptransport.NewStatsHandler(statsService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("check-in API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// isPublicRoute reports whether the request may bypass session validation.
// Session issuance, the liveness probe, and the metrics endpoint must stay
// reachable without a token.
func isPublicRoute(r *http.Request) bool {
	switch {
	case strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost:
		return true
	case strings.EqualFold(r.URL.Path, "/healthz"):
		return true
	case strings.EqualFold(r.URL.Path, "/metrics"):
		return true
	}
	return false
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
