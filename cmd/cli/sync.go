package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/vnavash/banksync/pkg/models"
	"github.com/vnavash/banksync/pkg/services"
)

func newSyncCmd() *cobra.Command {
	var scopesFlag []string

	cmd := &cobra.Command{
		Use:   "sync <account-id>",
		Short: "Sync one account now",
		Long: `Run a manual sync for a single account. Scopes the daily quota cannot
afford are skipped; the result shows what synced and what remains.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			scopes := make([]models.Scope, 0, len(scopesFlag))
			for _, raw := range scopesFlag {
				scope, err := models.ParseScope(strings.TrimSpace(raw))
				if err != nil {
					log.Error().Err(err).Msg("Invalid scope")
					return
				}
				scopes = append(scopes, scope)
			}

			result, err := state.orchestrator.SyncAccount(cmd.Context(), args[0], scopes)
			if err != nil {
				log.Error().Err(err).Msg("Sync failed")
				return
			}
			printSyncResult(result)
		},
	}

	cmd.Flags().StringSliceVar(&scopesFlag, "scopes", nil,
		"Scopes to sync (details, balances, transactions); default all")
	return cmd
}

func printSyncResult(result *models.SyncResult) {
	fmt.Printf("Sync result for %s:\n", result.AccountId)
	fmt.Printf("	Success: %v\n", result.Success)
	if len(result.SyncedScopes) > 0 {
		fmt.Printf("	Synced: %s\n", joinScopes(result.SyncedScopes))
	}
	if len(result.SkippedScopes) > 0 {
		fmt.Printf("	Skipped: %s\n", joinScopes(result.SkippedScopes))
	}
	for scope, remaining := range result.RemainingLimits {
		fmt.Printf("	Remaining %s calls today: %d\n", scope, remaining)
	}
	if result.Error != "" {
		fmt.Printf("	Error: %s\n", result.Error)
	}
}

func joinScopes(scopes []models.Scope) string {
	return strings.Join(lo.Map(scopes, func(s models.Scope, _ int) string {
		return s.String()
	}), ", ")
}

func newScheduleCmd() *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Scheduled sync operations",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync slot scheduled for the current hour",
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			syncLog, ok, err := state.scheduler.RunScheduled(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("Scheduled sync failed")
				return
			}
			if !ok {
				fmt.Println("No scheduled sync for current hour")
				return
			}
			fmt.Printf("%s: %d/%d accounts synced\n",
				syncLog.SyncType, syncLog.SuccessfulAccounts, syncLog.TotalAccounts)
		},
	}

	listCmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the daily sync slots",
		Run: func(cmd *cobra.Command, args []string) {
			for _, slot := range services.Slots {
				fmt.Printf("%-14s %s  %s\n", slot.Name, slot.ScheduledTime(), joinScopes(slot.Scopes))
			}
		},
	}

	scheduleCmd.AddCommand(runCmd, listCmd)
	return scheduleCmd
}
