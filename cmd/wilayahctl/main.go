// Command wilayahctl runs operator tasks against the Wilayah database:
// migrations, demo data, bulk imports, admin accounts and cache flushes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/wilayah_api/internal/app"
	"github.com/GTDGit/wilayah_api/internal/config"
	"github.com/GTDGit/wilayah_api/internal/database"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/repository"
	"github.com/GTDGit/wilayah_api/internal/service"
)

var (
	verbose bool
	asEmail string
)

var rootCmd = &cobra.Command{
	Use:           "wilayahctl",
	Short:         "Operate the Wilayah province/regency service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&asEmail, "as", "", "admin email recorded as creator of written rows (default: system)")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedDemoCmd(),
		newImportProvincesCmd(),
		newCreateAdminCmd(),
		newCacheCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is an opened configuration, database and service graph.
type env struct {
	cfg   *config.Config
	db    *sqlx.DB
	cache *app.Cache
	svc   *app.Services
}

func (e *env) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
	_ = e.db.Close()
}

// openEnv connects to the database and the configured cache. Operator
// commands bypass role checks. An unreachable Redis falls back to a local
// store unless strictCache is set.
func openEnv(strictCache bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return nil, err
	}
	c, err := app.OpenCache(cfg, !strictCache)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &env{
		cfg:   cfg,
		db:    db,
		cache: c,
		svc:   app.NewServices(db, c.Store, service.AllowAll, nil),
	}, nil
}

// systemActor resolves --as to an admin account. Without it rows are
// recorded as created by id 0.
func (e *env) systemActor(ctx context.Context) (models.Actor, error) {
	if asEmail == "" {
		return models.Actor{Email: "system", Role: models.RoleAdministrator}, nil
	}
	u, err := repository.NewAdminUserRepository(e.db).GetByEmail(ctx, asEmail)
	if err != nil {
		if repository.IsNoRows(err) {
			return models.Actor{}, fmt.Errorf("no admin with email %q", asEmail)
		}
		return models.Actor{}, err
	}
	return models.Actor{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}
