package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/config"
	"github.com/vnavash/banksync/pkg/provider"
	"github.com/vnavash/banksync/pkg/quota"
	"github.com/vnavash/banksync/pkg/services"
	"github.com/vnavash/banksync/pkg/utils"
)

var (
	dbPath  string
	rootCmd *cobra.Command
)

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error().Err(err).Msg("Error getting home directory")
		os.Exit(1)
	}

	defaultDBPath := filepath.Join(homeDir, ".banksync", "banksync.db")

	// Initialize configuration
	if err := config.InitGlobalConfig("config.yaml"); err != nil {
		// Only print a warning if the file doesn't exist, as GetConfig will create it later
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Failed to load configuration")
			log.Warn().Msg("A default configuration will be used")
		}
	}

	if configured := config.GetDatabasePath(); configured != "" {
		defaultDBPath = configured
	}

	rootCmd = &cobra.Command{
		Use:   "banksync",
		Short: "Keep bank accounts and transactions synced under daily provider quotas",
		Long: `banksync pulls account details, balances and transactions from an
open-banking provider into a local SQLite database, budgeting the
provider's daily per-account call limits across three scheduled passes.`,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "Path to the SQLite database")

	rootCmd.AddCommand(newServeCmd(), newSyncCmd(), newScheduleCmd(), newAccountsCmd(), newConfigCmd())

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// appState bundles the wired-up sync core for command handlers
type appState struct {
	db           db.DBInterface
	ledger       *quota.Ledger
	orchestrator *services.Orchestrator
	scheduler    *services.Scheduler
}

func initAppState() appState {
	database, err := db.New(dbPath)
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to database")
		os.Exit(1)
	}

	if err := database.Initialize(); err != nil {
		log.Error().Err(err).Msg("Error initializing database")
		os.Exit(1)
	}

	secretId, secretKey, err := config.GetProviderCredentials()
	if err != nil {
		log.Error().Err(err).Msg("Error getting provider credentials from config")
		log.Error().Msg("Please set provider.secretId and provider.secretKey in config.yaml")
		os.Exit(1)
	}

	cfg, _ := config.GetConfig()
	client := provider.NewGoCardlessClient(cfg.Provider.BaseURL, secretId, secretKey)
	if cfg.Provider.DebugHTTP {
		client.WithTransport(utils.DebugRoundTripper())
	}

	ledger := quota.NewLedger(database, config.GetQuotaLimit())
	executor := services.NewScopeExecutor(client, database)
	orchestrator := services.NewOrchestrator(database, ledger, executor)
	scheduler := services.NewScheduler(database, ledger, orchestrator)

	return appState{
		db:           database,
		ledger:       ledger,
		orchestrator: orchestrator,
		scheduler:    scheduler,
	}
}
