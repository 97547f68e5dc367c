package services

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
)

// ReceivableService turns billing configuration into persisted receivable
// calendars.
type ReceivableService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

func NewReceivableService(db *gorm.DB, log zerolog.Logger) *ReceivableService {
	return &ReceivableService{DB: db, Log: log}
}

// Regenerate recomputes the receivables calendar for a client and reconciles
// it with what is already persisted. Only rows still pending are replaced;
// invoiced and paid rows are never deleted and their amounts are never
// overwritten, so regeneration is safe to call after every billing change.
//
// Configuration problems (unknown cycles, misplaced zero durations) degrade
// to a best-effort schedule: they are logged and stored as review flags, and
// generation continues.
func (s *ReceivableService) Regenerate(clientID uint, start billing.Month, horizonMonths int) ([]models.ReceivableEntry, error) {
	var client models.Client
	if err := s.DB.Preload("BillingPhases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	cfg, problems := client.BillingConfig()
	entries, genProblems := billing.GenerateForClient(cfg, start, horizonMonths)
	problems = append(problems, genProblems...)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// months already locked in by an invoice or a payment
		var kept []models.ReceivableEntry
		if err := tx.Where("client_id = ? AND status IN ?", clientID,
			[]string{billing.ReceivableInvoiced, billing.ReceivablePaid}).Find(&kept).Error; err != nil {
			return err
		}
		locked := make(map[string]bool, len(kept))
		for _, k := range kept {
			locked[k.Month+"|"+k.Description] = true
		}

		if err := tx.Where("client_id = ? AND status = ?", clientID, billing.ReceivablePending).
			Delete(&models.ReceivableEntry{}).Error; err != nil {
			return err
		}

		for _, e := range entries {
			if locked[e.Month.String()+"|"+e.Description] {
				continue
			}
			row := models.ReceivableEntry{
				ClientID:    e.ClientID,
				Month:       e.Month.String(),
				Amount:      e.Amount,
				Description: e.Description,
				Status:      billing.ReceivablePending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for _, p := range problems {
			flag := models.ReviewFlag{
				EntityType: "Client",
				EntityID:   clientID,
				Source:     "generation",
				Field:      p.Field,
				Message:    p.Message,
			}
			if err := tx.Create(&flag).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range problems {
		s.Log.Warn().Uint("client_id", clientID).Str("field", p.Field).Str("problem", p.Message).
			Msg("billing configuration fallback during receivable generation")
	}

	return s.List(clientID)
}

// List returns a client's receivable calendar in month order.
func (s *ReceivableService) List(clientID uint) ([]models.ReceivableEntry, error) {
	var rows []models.ReceivableEntry
	err := s.DB.Where("client_id = ?", clientID).
		Order("month asc, description asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByKind filters a client's receivables by revenue classification.
func (s *ReceivableService) ListByKind(clientID uint, kind billing.Kind) ([]models.ReceivableEntry, error) {
	rows, err := s.List(clientID)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if billing.Classify(r.Description) == kind {
			out = append(out, r)
		}
	}
	return out, nil
}
