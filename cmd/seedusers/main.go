// Command seedusers creates a login for every submitter in the Active Queue.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/queueview/internal/config"
	"github.com/kiranshivaraju/queueview/internal/seed"
	"github.com/kiranshivaraju/queueview/internal/store"
	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/internal/tabular/xlsx"
	"github.com/kiranshivaraju/queueview/pkg/models"
	"github.com/spf13/cobra"
)

var (
	databaseURL   string
	source        string
	dataPath      string
	password      string
	role          string
	migrationsDir string
)

var rootCmd = &cobra.Command{
	Use:   "seedusers",
	Short: "Create credentials for every user in the Active Queue",
	Long: `Reads the Active Queue, groups job ids by submitter and upserts one
credential per submitter with the default password and role.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL of the credential store")
	rootCmd.Flags().StringVar(&source, "source", envOr("JOBS_SOURCE", config.SourceXLSX), "Job source: xlsx or postgres")
	rootCmd.Flags().StringVar(&dataPath, "data", envOr("JOBS_DATA_PATH", "data/jobs_data.xlsx"), "Path to the jobs workbook")
	rootCmd.Flags().StringVar(&password, "password", os.Getenv("DEFAULT_PASSWORD"), "Password given to every seeded user")
	rootCmd.Flags().StringVar(&role, "role", models.RoleAdmin, "Role given to every seeded user")
	rootCmd.Flags().StringVar(&migrationsDir, "migrations", "migrations", "Migrations directory")
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if databaseURL == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	if password == "" {
		return fmt.Errorf("--password or DEFAULT_PASSWORD is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, config.DatabaseConfig{
		URL:             databaseURL,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(databaseURL, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pgStore := store.NewPostgresStore(pool)
	src, err := sourceFor(source, dataPath, pgStore)
	if err != nil {
		return err
	}

	n, err := seed.Run(ctx, src, pgStore, seed.Options{Password: password, Role: role})
	if err != nil {
		return err
	}
	slog.Info("users seeded", "count", n, "role", role, "source", source)
	return nil
}

func sourceFor(name, path string, pg tabular.Store) (tabular.Store, error) {
	switch name {
	case config.SourceXLSX:
		return xlsx.NewStore(path, nil), nil
	case config.SourcePostgres:
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown job source %q", name)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
