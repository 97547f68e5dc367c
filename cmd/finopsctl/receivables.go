package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/db"
	"github.com/finleaf/finops/internal/logger"
	"github.com/finleaf/finops/internal/models"
	"github.com/finleaf/finops/internal/services"
)

var receivablesCmd = &cobra.Command{
	Use:   "receivables",
	Short: "Receivables batch operations",
}

var receivablesRegenCmd = &cobra.Command{
	Use:   "regen",
	Short: "Regenerate projected receivables",
	Long: `Regenerates the receivables calendar for one client (--client) or for
every active client. Rows already invoiced or paid are preserved; only
pending projections are replaced.`,
	Example: `  # All active clients, 12 months from the current month
  finopsctl receivables regen

  # One client, custom window
  finopsctl receivables regen --client 42 --start 2026-02 --horizon 24`,
	RunE: runReceivablesRegen,
}

func init() {
	rootCmd.AddCommand(receivablesCmd)
	receivablesCmd.AddCommand(receivablesRegenCmd)

	receivablesRegenCmd.Flags().Uint("client", 0, "Client ID (0 = all active clients)")
	receivablesRegenCmd.Flags().String("start", "", "Start month (format: YYYY-MM, default: current month)")
	receivablesRegenCmd.Flags().Int("horizon", 0, "Projection horizon in months (default: 12)")
}

func runReceivablesRegen(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("receivables")

	clientID, _ := cmd.Flags().GetUint("client")
	startStr, _ := cmd.Flags().GetString("start")
	horizon, _ := cmd.Flags().GetInt("horizon")

	start := billing.MonthOf(time.Now())
	if startStr != "" {
		m, err := billing.ParseMonth(startStr)
		if err != nil {
			return fmt.Errorf("invalid start month, use YYYY-MM: %w", err)
		}
		start = m
	}

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		return err
	}
	svc := services.NewReceivableService(conn, log)

	var ids []uint
	if clientID != 0 {
		ids = []uint{clientID}
	} else {
		var clients []models.Client
		if err := conn.Where("status = ?", models.ClientActive).Find(&clients).Error; err != nil {
			return fmt.Errorf("listing active clients: %w", err)
		}
		for _, c := range clients {
			ids = append(ids, c.ID)
		}
	}

	for _, id := range ids {
		entries, err := svc.Regenerate(id, start, horizon)
		if err != nil {
			return fmt.Errorf("client %d: %w", id, err)
		}
		log.Info().Uint("client_id", id).Int("entries", len(entries)).Msg("receivables regenerated")
	}
	log.Info().Int("clients", len(ids)).Str("start", string(start)).Msg("regeneration complete")
	return nil
}
