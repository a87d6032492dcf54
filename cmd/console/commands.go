package main

import (
	"fmt"
	"sort"
	"time"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	"github.com/calculation/backend/internal/application/seed"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	seedFile string

	updateDryRun         bool
	updateSince          string
	updateEmptyItems     bool
	updateDuplicateItems bool
	updateSort           bool

	archiveState  string
	archiveBefore string
	archiveAge    time.Duration
	archiveDryRun bool

	userPassword string
	userRole     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the reference data (states, groups, categories, products, margins)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := seed.Load(seedFile)
		if err != nil {
			return err
		}
		return withEnvironment(cmd.Context(), func(env *environment) error {
			result, err := env.seeder.Apply(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			kinds := make([]string, 0, len(result.Created)+len(result.Skipped))
			for kind := range result.Created {
				kinds = append(kinds, kind)
			}
			for kind := range result.Skipped {
				if _, ok := result.Created[kind]; !ok {
					kinds = append(kinds, kind)
				}
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				fmt.Fprintf(out, "  %-15s created: %d, skipped: %d\n", kind, result.Created[kind], result.Skipped[kind])
			}
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Recompute the totals of the editable calculations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := calcapp.UpdateQuery{
			DryRun:         updateDryRun,
			EmptyItems:     updateEmptyItems,
			DuplicateItems: updateDuplicateItems,
			Sort:           updateSort,
		}
		if updateSince != "" {
			since, err := time.Parse(dateLayout, updateSince)
			if err != nil {
				return fmt.Errorf("invalid --since date %q, expected %s", updateSince, dateLayout)
			}
			query.Since = &since
		}
		return withEnvironment(cmd.Context(), func(env *environment) error {
			result, err := env.calculations.UpdateAll(cmd.Context(), query, consoleUser)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, change := range result.Changes {
				fmt.Fprintf(out, "  %s %-30s %12s -> %12s\n", change.ID, change.Customer,
					change.OldTotal.StringFixed(2), change.NewTotal.StringFixed(2))
			}
			fmt.Fprintf(out, "total: %d, updated: %d, skipped: %d, dry run: %t (%s)\n",
				result.Total, result.Updated, result.Skipped, result.DryRun, result.Duration.Round(time.Millisecond))
			return nil
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move the old calculations to a non editable state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if archiveState == "" {
			return fmt.Errorf("--state is required")
		}
		age := archiveAge
		if archiveBefore != "" {
			before, err := time.Parse(dateLayout, archiveBefore)
			if err != nil {
				return fmt.Errorf("invalid --before date %q, expected %s", archiveBefore, dateLayout)
			}
			age = time.Since(before)
		}
		return withEnvironment(cmd.Context(), func(env *environment) error {
			result, err := env.calculations.ArchiveToState(cmd.Context(), archiveState, age, archiveDryRun, consoleUser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d calculation(s) before %s moved to %s, dry run: %t\n",
				result.Count, result.Before.Format(dateLayout), result.TargetState, result.DryRun)
			return nil
		})
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user USERNAME EMAIL",
	Short: "Create an account, typically the first administrator",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userPassword == "" {
			return fmt.Errorf("--password is required")
		}
		fixture := &seed.Fixture{Users: []seed.UserFixture{{
			Username: args[0],
			Email:    args[1],
			Password: userPassword,
			Role:     userRole,
		}}}
		return withEnvironment(cmd.Context(), func(env *environment) error {
			result, err := env.seeder.Apply(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			if result.Created["users"] == 0 {
				return fmt.Errorf("user %q already exists", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", args[0], userRole)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture to load (default: embedded reference data)")

	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Report the changes without saving")
	updateCmd.Flags().StringVar(&updateSince, "since", "", "Only the calculations dated from this day (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateEmptyItems, "empty-items", false, "Remove the items with a zero price or quantity")
	updateCmd.Flags().BoolVar(&updateDuplicateItems, "duplicate-items", false, "Merge the duplicate items")
	updateCmd.Flags().BoolVar(&updateSort, "sort", false, "Sort the items by description")

	archiveCmd.Flags().StringVar(&archiveState, "state", "", "Code of the non editable target state")
	archiveCmd.Flags().StringVar(&archiveBefore, "before", "", "Archive the calculations dated before this day (YYYY-MM-DD)")
	archiveCmd.Flags().DurationVar(&archiveAge, "age", calcapp.DefaultArchiveAge, "Archive the calculations older than this")
	archiveCmd.Flags().BoolVar(&archiveDryRun, "dry-run", false, "List the calculations without moving them")

	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Password of the new account")
	createUserCmd.Flags().StringVar(&userRole, "role", "ROLE_ADMIN", "Role of the new account")

	rootCmd.AddCommand(seedCmd, updateCmd, archiveCmd, createUserCmd)
}
