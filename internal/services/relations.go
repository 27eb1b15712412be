package services

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/store"
)

// Resolver answers relationship traversals on demand. Nothing is preloaded:
// each call costs one link or foreign-key scan plus one batch fetch.
type Resolver struct {
	store *store.Store
}

func NewResolver(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// linked returns the distinct values of column want in a link table for the
// rows whose column by equals id.
func (r *Resolver) linked(ctx context.Context, table, want, by string, id uint, kind string) ([]uint, error) {
	q := sq.Select(want).Distinct().From(table).Where(sq.Eq{by: id}).OrderBy(want)
	return r.store.IDs(ctx, q, kind)
}

func exists[E any, P models.Record[E]](ctx context.Context, st *store.Store, id uint) error {
	_, err := store.For[E, P](st.DB()).Get(ctx, id)
	return err
}

// one returns the first row of rows, or NotFound for kind.
func one[E any](rows []E, op, kind string) (*E, error) {
	if len(rows) == 0 {
		return nil, errs.NotFound(op, kind)
	}
	return &rows[0], nil
}

func (r *Resolver) CustomerJobs(ctx context.Context, customerID uint) ([]models.Job, error) {
	if err := exists[models.Customer](ctx, r.store, customerID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "customer_jobs_links", "job_id", "customer_id", customerID, "Job")
	if err != nil {
		return nil, err
	}
	return store.For[models.Job](r.store.DB()).FindByIDs(ctx, ids)
}

func (r *Resolver) CustomerServices(ctx context.Context, customerID uint) ([]models.Services, error) {
	if err := exists[models.Customer](ctx, r.store, customerID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "service_links", "service_id", "customer_id", customerID, "Service")
	if err != nil {
		return nil, err
	}
	return store.For[models.Services](r.store.DB()).FindByIDs(ctx, ids)
}

func (r *Resolver) CustomerFrequency(ctx context.Context, customerID uint) (*models.Frequency, error) {
	if err := exists[models.Customer](ctx, r.store, customerID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "customer_frequency_links", "frequency_id", "customer_id", customerID, "Frequency")
	if err != nil {
		return nil, err
	}
	rows, err := store.For[models.Frequency](r.store.DB()).FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return one(rows, "customer frequency", "Frequency")
}

func (r *Resolver) CustomerServiceArea(ctx context.Context, customerID uint) (*models.ServiceArea, error) {
	if err := exists[models.Customer](ctx, r.store, customerID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "customer_service_area_links", "service_area_id", "customer_id", customerID, "Service Area")
	if err != nil {
		return nil, err
	}
	rows, err := store.For[models.ServiceArea](r.store.DB()).FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return one(rows, "customer service area", "Service Area")
}

func (r *Resolver) EmployeeJobs(ctx context.Context, employeeID uint) ([]models.Job, error) {
	if err := exists[models.Employee](ctx, r.store, employeeID); err != nil {
		return nil, err
	}
	return store.For[models.Job](r.store.DB()).Where(ctx, "employee_id", employeeID)
}

func (r *Resolver) EmployeeExpenses(ctx context.Context, employeeID uint) ([]models.Expense, error) {
	if err := exists[models.Employee](ctx, r.store, employeeID); err != nil {
		return nil, err
	}
	return store.For[models.Expense](r.store.DB()).Where(ctx, "purchased_by", employeeID)
}

func (r *Resolver) JobEmployee(ctx context.Context, jobID uint) (*models.Employee, error) {
	job, err := store.For[models.Job](r.store.DB()).Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return store.For[models.Employee](r.store.DB()).Get(ctx, job.EmployeeID)
}

// JobCustomer returns the customer linked to the job. When several are
// linked, the one with the lowest id wins.
func (r *Resolver) JobCustomer(ctx context.Context, jobID uint) (*models.Customer, error) {
	if err := exists[models.Job](ctx, r.store, jobID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "customer_jobs_links", "customer_id", "job_id", jobID, "Customer")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.NotFound("job customer", "Customer")
	}
	return store.For[models.Customer](r.store.DB()).Get(ctx, ids[0])
}

func (r *Resolver) JobInvoice(ctx context.Context, jobID uint) (*models.Invoice, error) {
	job, err := store.For[models.Job](r.store.DB()).Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.InvoiceID == nil {
		return nil, errs.NotFound("job invoice", "Invoice")
	}
	return store.For[models.Invoice](r.store.DB()).Get(ctx, *job.InvoiceID)
}

func (r *Resolver) JobServices(ctx context.Context, jobID uint) ([]models.Services, error) {
	if err := exists[models.Job](ctx, r.store, jobID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "service_links", "service_id", "job_id", jobID, "Service")
	if err != nil {
		return nil, err
	}
	return store.For[models.Services](r.store.DB()).FindByIDs(ctx, ids)
}

func (r *Resolver) JobExpenses(ctx context.Context, jobID uint) ([]models.Expense, error) {
	if err := exists[models.Job](ctx, r.store, jobID); err != nil {
		return nil, err
	}
	return store.For[models.Expense](r.store.DB()).Where(ctx, "linked_job", jobID)
}

// InvoiceJob returns the job that owns the invoice reference.
func (r *Resolver) InvoiceJob(ctx context.Context, invoiceID uint) (*models.Job, error) {
	if err := exists[models.Invoice](ctx, r.store, invoiceID); err != nil {
		return nil, err
	}
	jobs, err := store.For[models.Job](r.store.DB()).Where(ctx, "invoice_id", invoiceID)
	if err != nil {
		return nil, err
	}
	return one(jobs, "invoice job", "Job")
}

func (r *Resolver) InvoiceServices(ctx context.Context, invoiceID uint) ([]models.Services, error) {
	if err := exists[models.Invoice](ctx, r.store, invoiceID); err != nil {
		return nil, err
	}
	ids, err := r.linked(ctx, "service_links", "service_id", "invoice_id", invoiceID, "Service")
	if err != nil {
		return nil, err
	}
	return store.For[models.Services](r.store.DB()).FindByIDs(ctx, ids)
}
