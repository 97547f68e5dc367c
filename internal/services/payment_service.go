package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/models"
)

type PaymentService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

func NewPaymentService(db *gorm.DB, log zerolog.Logger) *PaymentService {
	return &PaymentService{DB: db, Log: log}
}

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvoiceNotPayable  = errors.New("invoice_not_payable")
	ErrInvalidAmount      = errors.New("invalid_payment_amount")
	ErrPaymentNotFound    = errors.New("payment_not_found")
	ErrPaymentAlreadyVoid = errors.New("payment_already_void")
)

type PaymentInput struct {
	InvoiceID uint            `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Mode      string          `json:"mode"`
}

// Record creates a payment and reconciles its invoice in a single
// transaction. The invoice row is read with a row-level lock so two
// concurrent payments against the same invoice serialize: each reconciliation
// always starts from the committed pre-payment amountPaid. A balance that
// still comes out negative (overpayment) is clamped at zero and flagged for
// manual review rather than rejected.
func (s *PaymentService) Record(in PaymentInput) (*models.PaymentReceived, *models.Invoice, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}

	var payment models.PaymentReceived
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, in.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if invoice.Status == billing.InvoiceVoid || invoice.Status == billing.InvoiceDraft {
			return ErrInvoiceNotPayable
		}

		out := billing.ApplyPayment(invoice.Total, invoice.AmountPaid, in.Amount, invoice.Status)

		payment = models.PaymentReceived{
			Reference: uuid.New().String(),
			InvoiceID: invoice.ID,
			ClientID:  invoice.ClientID,
			Amount:    in.Amount,
			Date:      in.Date,
			Mode:      in.Mode,
			Status:    models.PaymentConfirmed,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice.AmountPaid = out.AmountPaid
		invoice.BalanceDue = out.BalanceDue
		invoice.Status = out.Status
		if out.PaidNow {
			now := time.Now().UTC()
			invoice.PaidAt = &now
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}

		if out.PaidNow {
			if err := markReceivablePaid(tx, &invoice); err != nil {
				return err
			}
		}

		if out.Clamped {
			flag := models.ReviewFlag{
				EntityType: "Invoice",
				EntityID:   invoice.ID,
				Source:     "reconciliation",
				Field:      "balance_due",
				Message:    "payment " + payment.Reference + " drove the balance negative; clamped at 0",
			}
			if err := tx.Create(&flag).Error; err != nil {
				return err
			}
			s.Log.Warn().Uint("invoice_id", invoice.ID).Str("payment_ref", payment.Reference).
				Msg("overpayment clamped, invoice flagged for review")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, &invoice, nil
}

// Void reverses a confirmed payment. The payment row keeps its amount; only
// its status changes, and the invoice balance is backed out in the same
// transaction.
func (s *PaymentService) Void(paymentID uint) (*models.PaymentReceived, *models.Invoice, error) {
	var payment models.PaymentReceived
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if payment.Status == models.PaymentVoid {
			return ErrPaymentAlreadyVoid
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, payment.InvoiceID).Error; err != nil {
			return err
		}

		out := billing.ReversePayment(invoice.Total, invoice.AmountPaid, payment.Amount)
		invoice.AmountPaid = out.AmountPaid
		invoice.BalanceDue = out.BalanceDue
		if invoice.Status != billing.InvoiceVoid {
			invoice.Status = out.Status
			if out.Status != billing.InvoicePaid {
				invoice.PaidAt = nil
			}
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}

		payment.Status = models.PaymentVoid
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, &invoice, nil
}

// ListForInvoice returns payments against one invoice, oldest first.
func (s *PaymentService) ListForInvoice(invoiceID uint) ([]models.PaymentReceived, error) {
	var rows []models.PaymentReceived
	err := s.DB.Where("invoice_id = ?", invoiceID).Order("id asc").Find(&rows).Error
	return rows, err
}

// markReceivablePaid advances the receivable a fully paid invoice was cut
// from.
func markReceivablePaid(tx *gorm.DB, invoice *models.Invoice) error {
	return tx.Model(&models.ReceivableEntry{}).
		Where("invoice_id = ? AND status = ?", invoice.ID, billing.ReceivableInvoiced).
		Update("status", billing.ReceivablePaid).Error
}
