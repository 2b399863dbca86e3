package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/api"
	"github.com/spec-kit/care-client/internal/appointment"
	"github.com/spec-kit/care-client/internal/config"
	"github.com/spec-kit/care-client/internal/credential"
	"github.com/spec-kit/care-client/internal/domain"
	"github.com/spec-kit/care-client/internal/events"
	"github.com/spec-kit/care-client/internal/observability"
	"github.com/spec-kit/care-client/internal/result"
	"github.com/spec-kit/care-client/internal/schedule"
	"github.com/spec-kit/care-client/internal/session"
	"github.com/spec-kit/care-client/internal/storage"
	"github.com/spec-kit/care-client/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble client", zap.Error(err))
	}
	defer cleanup()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

type cliApp struct {
	sessions     *session.Service
	appointments *appointment.Service
	logger       *zap.Logger
}

func buildApp(cfg *config.Config, logger *zap.Logger) (*cliApp, func(), error) {
	cleanup := func() {}

	var kv storage.KeyValue
	switch cfg.Storage.Backend {
	case "redis":
		redisStore := storage.NewRedisStore(cfg.Redis, logger)
		cleanup = redisStore.Close
		kv = redisStore
	default:
		fileStore, err := storage.NewFileStore(filepath.Dir(cfg.Storage.FilePath))
		if err != nil {
			return nil, cleanup, err
		}
		kv = fileStore
	}

	store := credential.NewStore(kv)
	inspector := credential.NewInspector(clockwork.NewRealClock())
	metrics := observability.NewMetrics()

	rawClient := &http.Client{Timeout: cfg.API.RequestTimeout()}
	coordinator := transport.NewRefreshCoordinator(cfg.API.BaseURL, rawClient, store, logger, metrics)
	httpClient := &http.Client{
		Timeout:   cfg.API.RequestTimeout(),
		Transport: transport.NewAuthTransport(nil, store, inspector, coordinator, logger, metrics),
	}

	apiClient := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(httpClient),
		api.WithLogger(logger),
	)

	grid, err := schedule.NewGrid(cfg.Schedule)
	if err != nil {
		return nil, cleanup, err
	}
	cache, err := schedule.NewCache(0)
	if err != nil {
		return nil, cleanup, err
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	dispatcher.Subscribe(events.SessionAuthenticated, func(_ context.Context, e events.Event) error {
		logger.Info("session authenticated", zap.Any("payload", e.Payload))
		return nil
	})
	dispatcher.Subscribe(events.SessionUnauthenticated, func(_ context.Context, _ events.Event) error {
		logger.Info("session ended")
		return nil
	})

	return &cliApp{
		sessions:     session.NewService(apiClient, store, inspector, dispatcher, logger),
		appointments: appointment.NewService(apiClient, grid, cache, dispatcher, metrics, logger),
		logger:       logger,
	}, cleanup, nil
}

func (a *cliApp) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		_ = fs.Parse(args)
		return printResult(ctx, a.sessions.Login(ctx, *email, *password))

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		file := fs.String("profile", "", "path to a JSON registration profile")
		_ = fs.Parse(args)
		var req api.RegisterRequest
		raw, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return err
		}
		return printResult(ctx, a.sessions.Register(ctx, req))

	case "logout":
		if err := a.sessions.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "status":
		fmt.Println(a.sessions.Status())
		return nil

	case "profile":
		return printResult(ctx, a.sessions.FetchProfile(ctx))

	case "availability":
		fs := flag.NewFlagSet("availability", flag.ExitOnError)
		provider := fs.String("provider", "", "provider id")
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		_ = fs.Parse(args)
		return printResult(ctx, a.appointments.FetchAvailability(ctx, *provider, *date))

	case "book":
		fs := flag.NewFlagSet("book", flag.ExitOnError)
		provider := fs.String("provider", "", "provider id")
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		start := fs.String("start", "", "slot start (HH:MM)")
		end := fs.String("end", "", "slot end (HH:MM)")
		_ = fs.Parse(args)
		startTime, err := domain.ParseClockTime(*start)
		if err != nil {
			return err
		}
		endTime, err := domain.ParseClockTime(*end)
		if err != nil {
			return err
		}
		return printResult(ctx, a.appointments.BookSlot(ctx, *provider, *date, startTime, endTime))

	case "cancel":
		fs := flag.NewFlagSet("cancel", flag.ExitOnError)
		id := fs.String("id", "", "appointment id")
		_ = fs.Parse(args)
		return printResult(ctx, a.appointments.CancelAppointment(ctx, *id))

	case "appointments":
		return printResult(ctx, a.appointments.MyAppointments(ctx))

	case "doctor-appointments":
		return printResult(ctx, a.appointments.ProviderAppointments(ctx))

	case "publish-availability":
		fs := flag.NewFlagSet("publish-availability", flag.ExitOnError)
		date := fs.String("date", "", "date (YYYY-MM-DD)")
		slots := fs.String("slots", "", "comma-separated HH:MM-HH:MM windows")
		_ = fs.Parse(args)
		windows, err := parseWindows(*slots)
		if err != nil {
			return err
		}
		return printResult(ctx, a.appointments.PublishAvailability(ctx, *date, windows))

	case "nearby":
		fs := flag.NewFlagSet("nearby", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		distance := fs.Int("distance", 10, "search radius in km")
		_ = fs.Parse(args)
		return printResult(ctx, a.appointments.NearbyProviders(ctx, *lat, *lng, *distance))

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printResult[T any](ctx context.Context, ch <-chan result.Result[T]) error {
	res, err := result.Await(ctx, ch)
	if err != nil {
		return err
	}
	if res.State == result.StateFailed {
		return fmt.Errorf("%s", res.Reason)
	}
	encoded, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func parseWindows(expr string) ([]domain.TimeWindow, error) {
	var windows []domain.TimeWindow
	for _, part := range splitNonEmpty(expr, ",") {
		bounds := splitNonEmpty(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid window %q, want HH:MM-HH:MM", part)
		}
		start, err := domain.ParseClockTime(bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := domain.ParseClockTime(bounds[1])
		if err != nil {
			return nil, err
		}
		windows = append(windows, domain.TimeWindow{Start: start, End: end})
	}
	return windows, nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: carectl <command> [flags]

commands:
  login -email -password        authenticate and store the credential
  register -profile <file>      create an account from a JSON profile
  logout                        clear the stored credential
  status                        print AUTHENTICATED or UNAUTHENTICATED
  profile                       fetch the account profile
  availability -provider -date  show the day's slot grid
  book -provider -date -start -end
  cancel -id                    cancel an appointment
  appointments                  list my appointments
  doctor-appointments           list appointments booked with me
  publish-availability -date -slots
  nearby -lat -lng -distance    find nearby providers`)
}
