package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-lms-client/apiclient"
	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/filestore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(cfg, logger, os.Args); err != nil && !errors.Is(err, errHelp) {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func run(cfg config.Config, logger zerolog.Logger, args []string) error {
	store := filestore.New(cfg.GetSessionFile())

	// The guard needs the client for logout notification and the client
	// needs the guard for 401 invalidation; wire the cycle through closures.
	var guard *session.Guard
	client := apiclient.New(cfg.GetAPIBaseURL(),
		apiclient.WithLogger(logger),
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithTokenProvider(func() string {
			token, _, _ := store.Read()
			return token
		}),
		apiclient.WithOnUnauthorized(func() {
			if guard != nil {
				guard.Invalidate()
			}
		}),
	)

	guard, err := session.NewGuard(store,
		session.WithNotifier(client),
		session.WithLogger(logger),
	)
	if err != nil {
		return errors.Wrap(err, "[run] NewGuard")
	}

	cli := &commandLine{
		log:    logger,
		guard:  guard,
		client: client,
	}

	if len(args) < 2 {
		displayAppName(cfg.GetAppName())
	}
	return cli.run(args)
}

func displayAppName(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
