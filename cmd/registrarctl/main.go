package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"registrar-portal/backend/internal/config"
	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store/postgres"
)

// adminStore is the slice of the credential store the CLI touches.
type adminStore interface {
	GetRequireOTP(ctx context.Context, source model.AccountSource, personID string) (bool, error)
	SetRequireOTP(ctx context.Context, source model.AccountSource, personID string, require bool) error
	ListPageAccess(ctx context.Context, employeeID string) ([]int, error)
	GetPagePrivilege(ctx context.Context, employeeID string, pageID int) (int, error)
}

// Seams for tests.
var (
	loadConfig = config.Load
	openStore  = func(cfg config.Config) (adminStore, func(), error) {
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is not set")
		}
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return pg, pg.Close, nil
	}
	runMigrate = postgres.Migrate
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "registrarctl",
		Short:         "Registrar portal administration tool",
		Long:          "Administrative tool for the registrar backend: schema migrations, password hashes, OTP settings and page access.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newOTPSettingCmd())
	root.AddCommand(newPageAccessCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			if err := runMigrate(cmd.Context(), cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// withStore loads config, opens the store and runs fn against it.
func withStore(fn func(st adminStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, closeFn, err := openStore(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(st)
}
