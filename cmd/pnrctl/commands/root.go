package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pnr-tracker/internal/config"
	"pnr-tracker/internal/domain/ports/adapter"
	"pnr-tracker/internal/domain/ports/repository"
	pg "pnr-tracker/internal/infra/db/postgres"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/scraper"
)

// store is the read side of the bot's storage.
type store struct {
	sessions      repository.SessionRepository
	notifications repository.NotificationLogRepository
	close         func()
}

type app struct {
	cfgPath string
	verbose bool

	openStore  func(ctx context.Context, cfg *config.Config) (*store, error)
	newFetcher func(cfg *config.Config, logger *zerolog.Logger) adapter.StatusFetcher
}

func defaultApp() *app {
	return &app{
		openStore: openPostgres,
		newFetcher: func(cfg *config.Config, logger *zerolog.Logger) adapter.StatusFetcher {
			return scraper.NewRailYatriScraper(cfg.Scraper, logger)
		},
	}
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultApp())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pnrctl",
		Short:         "Inspect PNR statuses and the tracker's stored sessions",
		Long:          `pnrctl checks a PNR against the status site and reads the sessions and notification history kept by the tracker bot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log scraper and storage activity to stderr")
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newSessionsCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) config() (*config.Config, error) {
	cfg, err := config.LoadToolConfig(a.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (a *app) logger() *zerolog.Logger {
	if !a.verbose {
		return logging.Nop()
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return &l
}

func (a *app) store(ctx context.Context) (*store, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return a.openStore(ctx, cfg)
}

func openPostgres(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required to read stored sessions")
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &store{
		sessions:      pg.NewSessionRepo(pool),
		notifications: pg.NewNotificationLogRepo(pool),
		close:         pool.Close,
	}, nil
}
