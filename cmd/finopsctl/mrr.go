package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finleaf/finops/internal/db"
	"github.com/finleaf/finops/internal/logger"
	"github.com/finleaf/finops/internal/models"
)

var mrrCmd = &cobra.Command{
	Use:   "mrr",
	Short: "MRR batch operations",
}

var mrrRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute stored MRR and annual run rate for every client",
	Long: `Re-derives MRR and annual run rate from each client's pricing inputs
and writes the result back. Stored figures are a cache of the formula,
never a source of truth; run this after changing the formulas or after
importing clients from elsewhere.`,
	RunE: runMRRRecompute,
}

func init() {
	rootCmd.AddCommand(mrrCmd)
	mrrCmd.AddCommand(mrrRecomputeCmd)
}

func runMRRRecompute(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("mrr")

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		return err
	}
	var clients []models.Client
	if err := conn.Find(&clients).Error; err != nil {
		return fmt.Errorf("listing clients: %w", err)
	}
	changed := 0
	for i := range clients {
		before, beforeARR := clients[i].MRR, clients[i].AnnualRunRate
		clients[i].RecomputeFinancials()
		if clients[i].MRR.Equal(before) && clients[i].AnnualRunRate.Equal(beforeARR) {
			continue
		}
		if err := conn.Model(&clients[i]).
			Updates(map[string]any{"mrr": clients[i].MRR, "annual_run_rate": clients[i].AnnualRunRate}).Error; err != nil {
			return fmt.Errorf("client %d: %w", clients[i].ID, err)
		}
		log.Warn().Uint("client_id", clients[i].ID).
			Str("old_mrr", before.String()).Str("new_mrr", clients[i].MRR.String()).
			Msg("stored MRR disagreed with formula, corrected")
		changed++
	}
	log.Info().Int("clients", len(clients)).Int("corrected", changed).Msg("mrr recompute complete")
	return nil
}
