package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/payroll"
)

type salaryRepository struct {
	mu      sync.RWMutex
	records map[string]payroll.SalaryRecord
}

func NewSalaryRepository() payroll.SalaryRepository {
	return &salaryRepository{records: make(map[string]payroll.SalaryRecord)}
}

func (r *salaryRepository) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.EmployeeID == record.EmployeeID && existing.Month == record.Month && existing.Year == record.Year {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordExists
		}
	}
	record.ID = newID()
	r.records[record.ID] = record
	return record, nil
}

func (r *salaryRepository) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return rec, nil
}

func (r *salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payroll.SalaryRecord
	for _, rec := range r.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Month != nil && rec.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && rec.Year != *filter.Year {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return page(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *salaryRepository) UpdatePending(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[record.ID]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	if current.Status != payroll.SalaryStatusPending {
		return payroll.SalaryRecord{}, payroll.ErrInvalidTransition
	}
	current.Components = record.Components
	current.Gross = record.Gross
	current.TotalDeductions = record.TotalDeductions
	current.NetSalary = record.NetSalary
	current.UpdatedAt = record.UpdatedAt
	r.records[current.ID] = current
	return current, nil
}

func (r *salaryRepository) MarkPaid(ctx context.Context, id string, paidBy string, at time.Time) (payroll.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	if current.Status != payroll.SalaryStatusPending {
		return payroll.SalaryRecord{}, payroll.ErrInvalidTransition
	}
	current.Status = payroll.SalaryStatusPaid
	current.PayDate = &at
	current.PaidBy = &paidBy
	current.UpdatedAt = at
	r.records[id] = current
	return current, nil
}

func (r *salaryRepository) DeletePending(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return payroll.ErrSalaryRecordNotFound
	}
	if current.Status != payroll.SalaryStatusPending {
		return payroll.ErrInvalidTransition
	}
	delete(r.records, id)
	return nil
}
