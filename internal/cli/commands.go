package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

func newGenerateCommand(ctx context.Context, journals JournalOps) *cobra.Command {
	var next bool

	cmd := &cobra.Command{
		Use:   "generate <group-id> [week]",
		Short: "Generate a journal week for a group.",
		Long:  "generate creates the given week, or with --next the week after the latest one.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := args[0]
			principal := domain.SystemPrincipal()

			var week int
			switch {
			case next && len(args) == 2:
				return fmt.Errorf("pass either a week or --next, not both")
			case next:
				weeks, err := journals.GetGroupWeekNumbers(ctx, principal, groupID)
				if err != nil {
					return err
				}
				week = len(weeks) + 1
			case len(args) == 2:
				w, err := strconv.Atoi(args[1])
				if err != nil || w < 1 {
					return fmt.Errorf("week must be a positive integer, got %q", args[1])
				}
				week = w
			default:
				return fmt.Errorf("week is required")
			}

			result, err := journals.GenerateWeeklyJournal(ctx, principal, groupID, week)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s week %d of %s (%d entries)\n",
				result.Status, week, groupID, result.EntriesCreated)
			return nil
		},
	}

	cmd.Flags().BoolVar(&next, "next", false, "Generate the week after the latest one")

	return cmd
}

func newWeeksCommand(ctx context.Context, journals JournalOps) *cobra.Command {
	return &cobra.Command{
		Use:   "weeks <group-id>",
		Short: "List the created weeks of a group.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks, err := journals.GetGroupWeekNumbers(ctx, domain.SystemPrincipal(), args[0])
			if err != nil {
				return err
			}
			if len(weeks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no weeks yet")
				return nil
			}
			parts := make([]string, len(weeks))
			for i, w := range weeks {
				parts[i] = strconv.Itoa(w)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return nil
		},
	}
}

func newReconcileCommand(ctx context.Context, journals JournalOps, groups GroupLister) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reconcile [group-id ...]",
		Short: "Repair entries that drifted from group memberships.",
		Long:  "reconcile backfills active members and removes future entries of former members. Failures of one group do not stop the others.",
		RunE: func(cmd *cobra.Command, args []string) error {
			groupIDs := args
			if all {
				if len(args) > 0 {
					return fmt.Errorf("pass group IDs or --all, not both")
				}
				ids, err := groups.ListActiveGroupIDs(ctx)
				if err != nil {
					return fmt.Errorf("list groups: %w", err)
				}
				groupIDs = ids
			}
			if len(groupIDs) == 0 {
				return fmt.Errorf("at least one group ID or --all is required")
			}

			var errs []error
			for _, groupID := range groupIDs {
				result, err := journals.ReconcileGroup(ctx, domain.SystemPrincipal(), groupID)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", groupID, err)
					errs = append(errs, fmt.Errorf("%s: %w", groupID, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: +%d -%d\n", groupID, result.EntriesCreated, result.EntriesRemoved)
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reconcile every live group")

	return cmd
}
