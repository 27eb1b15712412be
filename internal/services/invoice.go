package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/store"
	"github.com/diewo77/fieldservice/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Charger creates card payments at the processor.
type Charger interface {
	CreatePayment(ctx context.Context, amountMinorUnits int64, sourceID, idempotencyKey string) (json.RawMessage, error)
}

type InvoiceService struct {
	store   *store.Store
	charger Charger
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewInvoiceService(st *store.Store, charger Charger, log logrus.FieldLogger) *InvoiceService {
	return &InvoiceService{store: st, charger: charger, log: log, now: time.Now}
}

// Pay charges the invoice total to sourceID. On success the invoice is marked
// paid, its job's payment flag is set and the customers linked to that job get
// today's date as lastPaymentDate. The invoice row stays locked from the paid
// check until commit, so concurrent calls charge at most once. The provider
// body is returned verbatim. A failed charge changes nothing.
func (s *InvoiceService) Pay(ctx context.Context, invoiceID uint, sourceID, idempotencyKey string) (json.RawMessage, error) {
	var (
		body    json.RawMessage
		amount  int64
		charged bool
	)
	today := s.now().Format(validation.DateLayout)
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("pay", inv.Kind())
			}
			return err
		}
		if inv.Paid {
			return errs.Validation("pay", inv.Kind(), map[string]string{"invoiceId": "already_paid"})
		}

		amount = inv.AmountMinorUnits()
		var err error
		if body, err = s.charger.CreatePayment(ctx, amount, sourceID, idempotencyKey); err != nil {
			return err
		}
		charged = true

		if err := tx.Model(&models.Invoice{}).Where("invoice_id = ?", invoiceID).Update("paid", true).Error; err != nil {
			return err
		}
		var job models.Job
		res := tx.Where("invoice_id = ?", invoiceID).Limit(1).Find(&job)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Job{}).Where("job_id = ?", job.JobID).Update("payment", true).Error; err != nil {
			return err
		}
		linked := tx.Model(&models.CustomerJobsLink{}).Select("customer_id").Where("job_id = ?", job.JobID)
		return tx.Model(&models.Customer{}).Where("customer_id IN (?)", linked).
			Update("last_payment_date", today).Error
	})
	if err != nil {
		if charged {
			// The processor already accepted the charge; surface the local failure loudly.
			s.log.WithError(err).WithFields(logrus.Fields{
				"invoice_id": invoiceID,
				"amount":     amount,
			}).Error("payment captured but invoice update failed")
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"invoice_id": invoiceID, "amount": amount}).Info("invoice paid")
	return body, nil
}
