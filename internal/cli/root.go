// Package cli implements journalctl, the operator tool for journal generation and repair.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/edu_center_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/edu_center_app/internal/app"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/SscSPs/edu_center_app/internal/platform/config"
)

// JournalOps is the part of the journal service the CLI drives.
type JournalOps interface {
	GenerateWeeklyJournal(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) (*domain.GenerateResult, error)
	GetGroupWeekNumbers(ctx context.Context, principal domain.Principal, groupID string) ([]int, error)
	ReconcileGroup(ctx context.Context, principal domain.Principal, groupID string) (*domain.ReconcileResult, error)
}

// GroupLister enumerates groups for --all passes.
type GroupLister interface {
	ListActiveGroupIDs(ctx context.Context) ([]string, error)
}

// NewRootCommand creates the top-level Cobra command. Every subcommand acts as the system principal.
func NewRootCommand(ctx context.Context, journals JournalOps, groups GroupLister) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Generate and repair weekly group journals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newGenerateCommand(ctx, journals),
		newWeeksCommand(ctx, journals),
		newReconcileCommand(ctx, journals, groups),
	)

	return cmd
}

// Main is used by cmd/journalctl/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	if err := execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	infra, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	services := infra.Services(cfg, nil)
	repos := pgsql.NewRepositoryProvider(infra.DB)
	return NewRootCommand(ctx, services.Journal, repos.GroupRepo).Execute()
}
