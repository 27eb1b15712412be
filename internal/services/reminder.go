package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/notify"
	"github.com/diewo77/fieldservice/internal/store"
	"github.com/diewo77/fieldservice/internal/validation"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderService notifies customers about unpaid invoices past their due
// date. Each invoice is reminded once: emailStatus is set after the sweep.
type ReminderService struct {
	store    *store.Store
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewReminderService(st *store.Store, n notify.Notifier, log logrus.FieldLogger) *ReminderService {
	return &ReminderService{store: st, notifier: n, log: log, now: time.Now}
}

// StartScheduler runs Sweep on the given cron schedule until the returned
// cron is stopped.
func (s *ReminderService) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.WithError(err).Error("reminder sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.log.WithField("schedule", schedule).Info("reminder scheduler started")
	return c, nil
}

// Sweep sends reminders for every overdue invoice not yet reminded and
// returns how many invoices were reminded. An invoice is flagged only once at
// least one of its customers was notified; otherwise the next sweep retries.
// Delivery failures are logged only.
func (s *ReminderService) Sweep(ctx context.Context) (int, error) {
	db := s.store.DB().WithContext(ctx)
	today := s.now().Format(validation.DateLayout)

	var overdue []models.Invoice
	if err := db.Where("paid = ? AND email_status = ? AND due_date < ?", false, false, today).
		Order("invoice_id").Find(&overdue).Error; err != nil {
		return 0, err
	}

	reminded := 0
	for _, inv := range overdue {
		customers, err := s.customersFor(ctx, inv.InvoiceID)
		if err != nil {
			return reminded, err
		}
		delivered := 0
		for _, c := range customers {
			msg := notify.Message{
				To:      c.PhoneNumber,
				Email:   c.Email,
				Subject: "Payment reminder",
				Body: fmt.Sprintf("Hi %s, invoice #%d for %s was due on %s.",
					c.FullName(), inv.InvoiceID, inv.TotalDue().StringFixed(2), inv.DueDate),
			}
			if err := s.notifier.Notify(ctx, msg); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"invoice_id":  inv.InvoiceID,
					"customer_id": c.CustomerID,
				}).Warn("reminder not delivered")
				continue
			}
			delivered++
		}
		if delivered == 0 {
			s.log.WithField("invoice_id", inv.InvoiceID).Warn("no reminder delivered; will retry")
			continue
		}
		if err := db.Model(&models.Invoice{}).Where("invoice_id = ?", inv.InvoiceID).
			Update("email_status", true).Error; err != nil {
			return reminded, err
		}
		reminded++
	}
	if reminded > 0 {
		s.log.WithField("invoices", reminded).Info("payment reminders sent")
	}
	return reminded, nil
}

func (s *ReminderService) customersFor(ctx context.Context, invoiceID uint) ([]models.Customer, error) {
	db := s.store.DB().WithContext(ctx)
	jobs := db.Model(&models.Job{}).Select("job_id").Where("invoice_id = ?", invoiceID)
	linked := db.Model(&models.CustomerJobsLink{}).Select("customer_id").Where("job_id IN (?)", jobs)
	var customers []models.Customer
	err := db.Where("customer_id IN (?)", linked).Order("customer_id").Find(&customers).Error
	return customers, err
}
