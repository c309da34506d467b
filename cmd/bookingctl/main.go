// Command bookingctl is the terminal front end for the Modu Booking backend:
// session management for the user and admin principals, external-identity
// login/linking, and the three acquisition channels (direct booking,
// pre-reservation, lottery).
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/credentials"
	"github.com/modubooking/go-booking-client/internal/config"
	"github.com/modubooking/go-booking-client/internal/httpclient"
	"github.com/modubooking/go-booking-client/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("bookingctl", pflag.ContinueOnError)
	logLevel := flags.String("log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	flags.SetInterspersed(false)
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := newLogger(*logLevel)
	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		displayAppName(cfg.AppName)
		usage()
		return nil
	}
	return app.dispatch(rest[0], rest[1:])
}

// app holds the wired client: config, stores, backend client, session.
type app struct {
	cfg        config.Config
	logger     zerolog.Logger
	userStore  credentials.Store
	adminStore credentials.Store
	client     *api.Client
	session    *session.Manager
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	credDir := cfg.CredentialDir
	if credDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			credDir = base + "/modubooking"
		}
		// An empty dir leaves the stores unavailable; everything still
		// works, just without persisted credentials.
	}
	userStore := credentials.NewFileStore(credDir, credentials.PrincipalUser)
	adminStore := credentials.NewFileStore(credDir, credentials.PrincipalAdmin)

	transport := httpclient.NewBreakerClient(
		httpclient.New(httpclient.Config{Timeout: cfg.HTTPTimeout, MaxRetries: cfg.MaxRetries}),
		httpclient.DefaultBreakerConfig("booking-backend"),
		logger,
	)

	client, err := api.New(cfg.BaseURL, transport,
		api.WithUserTokenSource(credentials.TokenSource(userStore)),
		api.WithAdminTokenSource(credentials.TokenSource(adminStore)),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewManager(userStore, client, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		userStore:  userStore,
		adminStore: adminStore,
		client:     client,
		session:    sess,
	}, nil
}

func (a *app) dispatch(command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(args)
	case "logout":
		return a.cmdLogout(args)
	case "status":
		return a.cmdStatus(args)
	case "oauth":
		return a.cmdOAuth(args)
	case "recover":
		return a.cmdRecover(args)
	case "performances":
		return a.cmdPerformances(args)
	case "book":
		return a.cmdBook(args)
	case "prereserve":
		return a.cmdPrereserve(args)
	case "lottery":
		return a.cmdLottery(args)
	case "admin":
		return a.cmdAdmin(args)
	case "help":
		usage()
		return nil
	default:
		usage()
		return errors.Errorf("unknown command %q", command)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

func displayAppName(appName string) {
	banner := figure.NewFigure(appName, "cybermedium", true)
	banner.Print()
	fmt.Println()
}

func usage() {
	fmt.Println(`Usage: bookingctl [--log-level LEVEL] COMMAND

Commands:
  login --email EMAIL --password PASSWORD    log in with email and password
  logout                                     log out (local state always clears)
  status                                     show session status
  oauth login|link                           external-identity login or link
  recover email|confirm                      withdrawal account recovery
  performances [--search QUERY] [--id ID]    list or inspect performances
  book                                       direct seat booking wizard
  prereserve                                 pre-reservation application wizard
  lottery enter|entries|pay                  lottery entry and win payment
  admin login|logout|add-section|add-seat    admin venue management`)
}
