package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vnavash/banksync/pkg/config"
	"github.com/vnavash/banksync/pkg/models"
)

func newAccountsCmd() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage tracked bank accounts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked accounts",
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			active, err := state.db.ListAccountsByStatus(models.AccountStatusActive)
			if err != nil {
				log.Error().Err(err).Msg("Error listing accounts")
				return
			}
			inactive, err := state.db.ListAccountsByStatus(models.AccountStatusInactive)
			if err != nil {
				log.Error().Err(err).Msg("Error listing accounts")
				return
			}
			accounts := append(active, inactive...)

			if len(accounts) == 0 {
				fmt.Println("No accounts found")
				return
			}

			fmt.Printf("Found %d accounts:\n\n", len(accounts))
			fmt.Printf("%-38s %-25s %15s %-10s\n", "Provider ID", "Name", "Balance", "Status")
			fmt.Println(strings.Repeat("-", 95))
			for _, account := range accounts {
				name := account.DisplayName
				if len(name) > 25 {
					name = name[:25]
				}
				fmt.Printf("%-38s %-25s %15s %-10s\n",
					account.ProviderAccountId,
					name,
					formatAmount(account.Balance),
					account.Status)
			}
		},
	}

	var displayName, currency string
	addCmd := &cobra.Command{
		Use:   "add <provider-account-id>",
		Short: "Track an account produced by the onboarding flow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			account := &models.Account{
				ProviderAccountId: args[0],
				DisplayName:       displayName,
				Currency:          currency,
				Status:            models.AccountStatusActive,
			}
			if err := state.db.UpsertAccount(account); err != nil {
				log.Error().Err(err).Msg("Error adding account")
				return
			}
			log.Info().Str("account", args[0]).Msg("Account added")
		},
	}
	addCmd.Flags().StringVar(&displayName, "name", "", "Display name for the account")
	addCmd.Flags().StringVar(&currency, "currency", "", "Account currency code")

	disableCmd := &cobra.Command{
		Use:   "disable <provider-account-id>",
		Short: "Stop syncing an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			if err := state.db.SetAccountStatus(args[0], models.AccountStatusInactive); err != nil {
				log.Error().Err(err).Msg("Error disabling account")
				return
			}
			log.Info().Str("account", args[0]).Msg("Account disabled")
		},
	}

	accountsCmd.AddCommand(listCmd, addCmd, disableCmd)
	return accountsCmd
}

// formatAmount renders a stored amount in its currency's display format
func formatAmount(amount models.Amount) string {
	if amount.IsZero() {
		return "-"
	}
	return amount.ToMoney().Display()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.GetConfig()
			if err != nil {
				log.Error().Err(err).Msg("Error loading configuration")
				return
			}
			fmt.Println("Current configuration:")
			fmt.Printf("	Provider base URL: %s\n", cfg.Provider.BaseURL)
			fmt.Printf("	Provider secret id set: %v\n", cfg.Provider.SecretId != "")
			fmt.Printf("	Provider secret key set: %v\n", cfg.Provider.SecretKey != "")
			fmt.Printf("	Quota limit per day: %d\n", config.GetQuotaLimit())
			fmt.Printf("	Listen address: %s\n", config.GetListenAddr())
			fmt.Printf("	Database path: %s\n", dbPath)
		},
	}
}
