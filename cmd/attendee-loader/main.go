// Command attendee-loader imports a JSON attendee export and an optional
// event list into the check-in database. Records go through the same
// application service as live registrations so identity tokens and skill
// deduplication behave identically.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-checkin/internal/application"
	"github.com/example/event-checkin/internal/identity"
	"github.com/example/event-checkin/internal/logging"
	"github.com/example/event-checkin/internal/persistence"
	"github.com/example/event-checkin/internal/persistence/sqlite"
	"github.com/example/event-checkin/internal/seed"
)

func main() {
	var (
		dbPath   = flag.String("db", "checkin.db", "path of the SQLite database")
		seedPath = flag.String("seed", "", "path of the attendee JSON export")
		events   = flag.String("events", "", "comma separated event names to register")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(*logLevel)}))

	if *seedPath == "" && *events == "" {
		logger.Error("nothing to load, provide -seed and/or -events")
		os.Exit(1)
	}

	pool, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "path", *dbPath)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := func() string { return uuid.NewString() }
	attendeeRepo := sqlite.NewAttendeeRepository(pool)
	eventRepo := sqlite.NewEventRepository(pool)

	attendeeService := application.NewAttendeeService(attendeeRepo, identity.NewIssuer(nil), idGenerator, time.Now, logger)
	loader := seed.NewLoader(attendeeService, eventCreatorAdapter{repo: eventRepo}, logger)

	if names := splitEventNames(*events); len(names) > 0 {
		summary, err := loader.LoadEvents(ctx, names)
		if err != nil {
			logger.Error("failed to register events", "error", err)
			os.Exit(1)
		}
		logger.Info("events registered", "loaded", summary.Loaded, "failed", summary.Failed)
	}

	if *seedPath != "" {
		summary, err := loader.LoadFile(ctx, *seedPath)
		if err != nil {
			logger.Error("failed to load attendee export", "error", err, "path", *seedPath)
			os.Exit(1)
		}
		logger.Info("attendee export loaded", "loaded", summary.Loaded, "failed", summary.Failed)
		if summary.Loaded == 0 && summary.Failed > 0 {
			os.Exit(1)
		}
	}
}

// eventCreatorAdapter narrows the event repository to the loader's needs.
type eventCreatorAdapter struct {
	repo *sqlite.EventRepository
}

func (a eventCreatorAdapter) CreateEvent(ctx context.Context, name string) error {
	return a.repo.CreateEvent(ctx, persistence.Event{Name: name})
}

func splitEventNames(list string) []string {
	if list == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
