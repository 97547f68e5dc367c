package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
)

type InvoiceService struct{ DB *gorm.DB }

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{DB: db} }

var (
	ErrReceivableNotFound      = errors.New("receivable_not_found")
	ErrReceivableNotInvoicable = errors.New("receivable_not_invoicable")
	ErrInvalidStatusChange     = errors.New("invalid_status_change")
)

const defaultTermsDays = 30

// CreateFromReceivable cuts an invoice for a pending receivable and marks the
// receivable invoiced, severing it from future regeneration. Both writes
// happen in one transaction.
func (s *InvoiceService) CreateFromReceivable(receivableID uint, terms string, dueInDays int) (*models.Invoice, error) {
	if dueInDays <= 0 {
		dueInDays = defaultTermsDays
	}
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rec models.ReceivableEntry
		if err := tx.First(&rec, receivableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReceivableNotFound
			}
			return err
		}
		if rec.Status != billing.ReceivablePending {
			return ErrReceivableNotInvoicable
		}
		var client models.Client
		if err := tx.First(&client, rec.ClientID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		number, err := models.GenerateInvoiceNumber(tx, now.Year())
		if err != nil {
			return err
		}
		invoice = models.Invoice{
			Number:      number,
			ClientID:    rec.ClientID,
			InvoiceDate: now,
			DueDate:     now.AddDate(0, 0, dueInDays),
			Terms:       terms,
			Currency:    client.Currency,
			Status:      billing.InvoiceDraft,
			LineItems: []models.InvoiceLineItem{{
				Description: rec.Description + " " + rec.Month,
				Quantity:    1,
				UnitAmount:  rec.Amount,
				Amount:      rec.Amount,
				Position:    0,
			}},
		}
		invoice.RecomputeTotals()
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		rec.Status = billing.ReceivableInvoiced
		rec.InvoiceID = &invoice.ID
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Send moves a draft invoice to sent. Reconciliation owns every later
// transition except void.
func (s *InvoiceService) Send(id uint) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if inv.Status != billing.InvoiceDraft {
		return nil, ErrInvalidStatusChange
	}
	inv.Status = billing.InvoiceSent
	if err := s.DB.Save(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// Void cancels an invoice. Allowed from any state except void itself; a paid
// invoice can still be voided administratively.
func (s *InvoiceService) Void(id uint) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !billing.CanVoid(inv.Status) {
		return nil, ErrInvalidStatusChange
	}
	inv.Status = billing.InvoiceVoid
	if err := s.DB.Save(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// Get loads an invoice with line items.
func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invoices for a client, newest first.
func (s *InvoiceService) List(clientID uint) ([]models.Invoice, error) {
	q := s.DB.Preload("LineItems").Order("id desc")
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}
	var rows []models.Invoice
	err := q.Find(&rows).Error
	return rows, err
}
