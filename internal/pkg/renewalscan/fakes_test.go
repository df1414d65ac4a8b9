package renewalscan

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/app/repository"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
)

// In-memory fakes for the repository and dispatcher boundaries.

type fakeTenantRepo struct {
	tenants []models.Tenant
	listErr error
}

func (f *fakeTenantRepo) Create(t *models.Tenant) error          { f.tenants = append(f.tenants, *t); return nil }
func (f *fakeTenantRepo) GetByID(id uint) (*models.Tenant, error) {
	for i := range f.tenants {
		if f.tenants[i].ID == id {
			return &f.tenants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTenantRepo) Update(*models.Tenant) error { return nil }
func (f *fakeTenantRepo) List() ([]models.Tenant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tenants, nil
}
func (f *fakeTenantRepo) Count() (int64, error) { return int64(len(f.tenants)), nil }

type fakeContractRepo struct {
	contracts []models.Contract
}

func (f *fakeContractRepo) Create(c *models.Contract) error { f.contracts = append(f.contracts, *c); return nil }
func (f *fakeContractRepo) GetByID(id uint) (*models.Contract, error) {
	for i := range f.contracts {
		if f.contracts[i].ID == id {
			return &f.contracts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeContractRepo) Update(*models.Contract) error                  { return nil }
func (f *fakeContractRepo) PatchFields(uint, map[string]any) error         { return nil }
func (f *fakeContractRepo) SoftDelete(uint) error                          { return nil }
func (f *fakeContractRepo) HardDelete(uint) error                          { return nil }
func (f *fakeContractRepo) CountByTenant(uint) (int64, error)              { return 0, nil }
func (f *fakeContractRepo) ListRenewingInWindow(tenantID uint, from, until time.Time) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range f.contracts {
		if c.TenantID != tenantID || c.RenewalDate == nil || c.IsDeleted() {
			continue
		}
		if c.RenewalDate.Before(from) || c.RenewalDate.After(until) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeSettingsRepo struct {
	byTenant map[uint]*models.NotificationSettings
}

func (f *fakeSettingsRepo) GetByTenantID(tenantID uint) (*models.NotificationSettings, error) {
	if s, ok := f.byTenant[tenantID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeSettingsRepo) Upsert(s *models.NotificationSettings) error {
	if f.byTenant == nil {
		f.byTenant = map[uint]*models.NotificationSettings{}
	}
	f.byTenant[s.TenantID] = s
	return nil
}

type fakeLedger struct {
	entries []models.NotificationLog
}

func ledgerKey(tenantID uint, contractID *uint, notificationType, dayKey string) string {
	cid := "-"
	if contractID != nil {
		cid = fmt.Sprintf("%d", *contractID)
	}
	return fmt.Sprintf("%d|%s|%s|%s", tenantID, cid, notificationType, dayKey)
}

func (f *fakeLedger) HasAttemptToday(tenantID uint, contractID *uint, notificationType string, day time.Time) (bool, error) {
	want := ledgerKey(tenantID, contractID, notificationType, timeutil.DayKey(day))
	for _, e := range f.entries {
		if !e.CountsTowardGuard() {
			continue
		}
		if ledgerKey(e.TenantID, e.ContractID, e.Type, e.DayKey) == want {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) RecordAttempt(entry *models.NotificationLog) error {
	if entry.ContractID != nil {
		want := ledgerKey(entry.TenantID, entry.ContractID, entry.Type, entry.DayKey)
		for _, e := range f.entries {
			if e.ContractID != nil && ledgerKey(e.TenantID, e.ContractID, e.Type, e.DayKey) == want {
				return repository.ErrDuplicateAttempt
			}
		}
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedger) RecordDigestDeliveries(tenantIDs []uint, recipients, subject string, day time.Time) error {
	for _, tenantID := range tenantIDs {
		f.entries = append(f.entries, models.NotificationLog{
			TenantID:   tenantID,
			Type:       models.NOTIFICATION_TYPE_WEEKLY_DIGEST,
			DayKey:     timeutil.DayKey(day),
			SentAt:     day,
			Status:     models.NOTIFICATION_STATUS_SENT,
			Recipients: recipients,
			Subject:    subject,
		})
	}
	return nil
}

func (f *fakeLedger) ListByTenant(tenantID uint, _ int) ([]models.NotificationLog, error) {
	var out []models.NotificationLog
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) DeleteForTenantDay(tenantID uint, day time.Time) (int64, error) {
	dayKey := timeutil.DayKey(day)
	var kept []models.NotificationLog
	var removed int64
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.DayKey == dayKey {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return removed, nil
}

func (f *fakeLedger) PurgeForContract(uint) error { return nil }

type sentMail struct {
	to      []string
	subject string
	html    string
}

type fakeDispatcher struct {
	sent []sentMail
	errs []error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, to []string, subject, htmlBody string) error {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, sentMail{to: append([]string(nil), to...), subject: subject, html: htmlBody})
	return nil
}
