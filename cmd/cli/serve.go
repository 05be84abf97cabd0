package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vnavash/banksync/pkg/api"
	"github.com/vnavash/banksync/pkg/config"
	"github.com/vnavash/banksync/pkg/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily sync schedule",
		Long: `Start the HTTP server and a background loop that fires each of the
three daily sync slots once at its scheduled hour.`,
		Run: func(cmd *cobra.Command, args []string) {
			state := initAppState()
			defer state.db.Close()

			go runSlotLoop(cmd.Context(), state)

			server := api.NewServer(state.orchestrator, state.scheduler, state.db)
			addr := config.GetListenAddr()
			log.Info().Str("addr", addr).Msg("starting HTTP server")
			if err := http.ListenAndServe(addr, server.Handler()); err != nil {
				log.Error().Err(err).Msg("HTTP server stopped")
			}
		},
	}
}

// runSlotLoop fires each scheduler slot once per day at its hour. The
// scheduler itself is an in-process call; there is no HTTP hop.
func runSlotLoop(ctx context.Context, state appState) {
	// day -> slot name, so a slot runs at most once per calendar day
	lastRun := make(map[string]string)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			slot, ok := services.SlotForHour(now.Hour())
			if !ok {
				continue
			}
			day := now.Format(time.DateOnly)
			if lastRun[slot.Name] == day {
				continue
			}
			lastRun[slot.Name] = day

			if _, err := state.scheduler.RunSlot(ctx, slot); err != nil {
				log.Error().Err(err).Str("slot", slot.Name).Msg("scheduled sync run failed")
			}
		}
	}
}
