package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
	"github.com/finleaf/finops/internal/validation"
)

type ClientService struct{ DB *gorm.DB }

func NewClientService(db *gorm.DB) *ClientService { return &ClientService{DB: db} }

var ErrClientNotFound = errors.New("client_not_found")

type PhaseInput struct {
	Cycle          string          `json:"cycle"`
	DurationMonths int             `json:"duration_months"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note"`
}

type ClientInput struct {
	Name            string           `json:"name"`
	ContactEmail    string           `json:"contact_email"`
	Status          string           `json:"status"`
	PricingModel    string           `json:"pricing_model"`
	BillingCycle    *string          `json:"billing_cycle"`
	Currency        string           `json:"currency"`
	PerSeatCost     *decimal.Decimal `json:"per_seat_cost"`
	SeatCount       *int             `json:"seat_count"`
	FlatAmount      *decimal.Decimal `json:"flat_amount"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	OneTimeRevenue  decimal.Decimal  `json:"one_time_revenue"`
	BillingPhases   []PhaseInput     `json:"billing_phases"`
}

// Validate checks the input before anything reaches the database. Cycle
// strings are not rejected here: generation recovers from unknown cycles with
// a Monthly fallback, so validation only enforces structural rules.
func (in ClientInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	switch in.PricingModel {
	case string(billing.ModelPerSeat):
		if in.PerSeatCost == nil || !in.PerSeatCost.IsPositive() {
			v["per_seat_cost"] = "must_be_positive"
		}
		if in.SeatCount == nil || *in.SeatCount <= 0 {
			v["seat_count"] = "must_be_positive"
		}
	case string(billing.ModelFlatMRR):
		if in.FlatAmount == nil || !in.FlatAmount.IsPositive() {
			v["flat_amount"] = "must_be_positive"
		}
	case string(billing.ModelOneTimeOnly):
	default:
		v["pricing_model"] = "unknown_pricing_model"
	}
	if in.PricingModel != string(billing.ModelOneTimeOnly) && in.BillingCycle == nil && len(in.BillingPhases) == 0 {
		v["billing_cycle"] = "required"
	}
	validation.DecimalRange("discount_percent", in.DiscountPercent, decimal.Zero, decimal.NewFromInt(100), v)
	if in.OneTimeRevenue.IsNegative() {
		v["one_time_revenue"] = "must_not_be_negative"
	}
	for i, ph := range in.BillingPhases {
		if ph.Amount.IsNegative() {
			v["billing_phases."+itoa(i)+".amount"] = "must_not_be_negative"
		}
		if ph.DurationMonths < 0 {
			v["billing_phases."+itoa(i)+".duration_months"] = "must_not_be_negative"
		}
	}
	return v
}

// Create persists a new client. MRR and the annual run rate are always
// recomputed from the pricing inputs, never taken from the caller.
func (s *ClientService) Create(in ClientInput) (*models.Client, validation.Violations, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, v, nil
	}
	c := &models.Client{
		Name:            in.Name,
		ContactEmail:    in.ContactEmail,
		Status:          models.ClientActive,
		PricingModel:    in.PricingModel,
		BillingCycle:    in.BillingCycle,
		Currency:        choose(in.Currency, "USD"),
		PerSeatCost:     in.PerSeatCost,
		SeatCount:       in.SeatCount,
		FlatAmount:      in.FlatAmount,
		DiscountPercent: in.DiscountPercent,
		OneTimeRevenue:  in.OneTimeRevenue,
	}
	if in.Status != "" {
		c.Status = in.Status
	}
	c.RecomputeFinancials()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return replacePhases(tx, c, in.BillingPhases)
	})
	if err != nil {
		return nil, nil, err
	}
	out, gerr := s.Get(c.ID)
	return out, nil, gerr
}

// UpdateInput applies partial updates; nil pointer fields are left untouched.
type UpdateInput struct {
	Name            *string          `json:"name"`
	ContactEmail    *string          `json:"contact_email"`
	Status          *string          `json:"status"`
	PricingModel    *string          `json:"pricing_model"`
	BillingCycle    *string          `json:"billing_cycle"`
	PerSeatCost     *decimal.Decimal `json:"per_seat_cost"`
	SeatCount       *int             `json:"seat_count"`
	FlatAmount      *decimal.Decimal `json:"flat_amount"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	OneTimeRevenue  *decimal.Decimal `json:"one_time_revenue"`
}

// Update mutates a client and re-derives MRR/ARR whenever any pricing input
// changed. The recomputation is unconditional on those fields: stored MRR is
// never an independent source of truth.
func (s *ClientService) Update(id uint, in UpdateInput) (*models.Client, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.ContactEmail != nil {
		c.ContactEmail = *in.ContactEmail
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.PricingModel != nil {
		c.PricingModel = *in.PricingModel
	}
	if in.BillingCycle != nil {
		c.BillingCycle = in.BillingCycle
	}
	if in.PerSeatCost != nil {
		c.PerSeatCost = in.PerSeatCost
	}
	if in.SeatCount != nil {
		c.SeatCount = in.SeatCount
	}
	if in.FlatAmount != nil {
		c.FlatAmount = in.FlatAmount
	}
	if in.DiscountPercent != nil {
		c.DiscountPercent = *in.DiscountPercent
	}
	if in.OneTimeRevenue != nil {
		c.OneTimeRevenue = *in.OneTimeRevenue
	}
	c.RecomputeFinancials()
	if err := s.DB.Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ReplaceBillingPhases swaps the client's whole phase list in one
// transaction; phases have no lifecycle of their own.
func (s *ClientService) ReplaceBillingPhases(id uint, phases []PhaseInput) (*models.Client, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		return replacePhases(tx, c, phases)
	}); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func replacePhases(tx *gorm.DB, c *models.Client, phases []PhaseInput) error {
	if err := tx.Where("client_id = ?", c.ID).Delete(&models.BillingPhase{}).Error; err != nil {
		return err
	}
	for i, ph := range phases {
		row := models.BillingPhase{
			ClientID:       c.ID,
			Position:       i,
			Cycle:          ph.Cycle,
			DurationMonths: ph.DurationMonths,
			Amount:         ph.Amount,
			Note:           ph.Note,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get loads a client with its phases in position order.
func (s *ClientService) Get(id uint) (*models.Client, error) {
	var c models.Client
	err := s.DB.Preload("BillingPhases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns clients, optionally filtered by lifecycle status.
func (s *ClientService) List(status string) ([]models.Client, error) {
	q := s.DB.Preload("BillingPhases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Order("id asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var clients []models.Client
	if err := q.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
