package repository

import (
	"errors"
	"time"

	"github.com/RenewalHub/RenewalHub/app/models"
	"gorm.io/gorm"
)

// ErrDuplicateAttempt is returned when a ledger insert collides with the
// composite unique index, i.e. a concurrent pass already recorded this
// (tenant, contract, type, day). Callers treat it as "already handled".
var ErrDuplicateAttempt = errors.New("repository: attempt already recorded for this day")

// TenantRepository defines the interface for tenant-related database operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	List() ([]models.Tenant, error)
	Count() (int64, error)
}

// ContractRepository defines the interface for contract-related database operations
type ContractRepository interface {
	Create(contract *models.Contract) error
	GetByID(id uint) (*models.Contract, error)
	Update(contract *models.Contract) error
	PatchFields(id uint, fields map[string]any) error
	SoftDelete(id uint) error
	// HardDelete removes the row permanently and purges ledger entries
	// referencing it.
	HardDelete(id uint) error
	// ListRenewingInWindow returns the tenant's non-deleted contracts whose
	// renewal date falls in [from, until], ascending by renewal date.
	ListRenewingInWindow(tenantID uint, from, until time.Time) ([]models.Contract, error)
	CountByTenant(tenantID uint) (int64, error)
}

// NotificationSettingsRepository defines the interface for per-tenant preferences
type NotificationSettingsRepository interface {
	GetByTenantID(tenantID uint) (*models.NotificationSettings, error)
	Upsert(settings *models.NotificationSettings) error
}

// NotificationLogRepository is the idempotency ledger boundary
type NotificationLogRepository interface {
	// HasAttemptToday reports whether any SENT or ERROR entry exists for the
	// key within the given UTC calendar day. contractID is nil for digests.
	HasAttemptToday(tenantID uint, contractID *uint, notificationType string, day time.Time) (bool, error)
	// RecordAttempt appends exactly one row; prior rows are never mutated.
	// A unique-index collision surfaces as ErrDuplicateAttempt.
	RecordAttempt(entry *models.NotificationLog) error
	// RecordDigestDeliveries writes one WEEKLY_DIGEST row per tenant in a
	// single transaction so a crash cannot leave a partial fan-out.
	RecordDigestDeliveries(tenantIDs []uint, recipients, subject string, day time.Time) error
	ListByTenant(tenantID uint, limit int) ([]models.NotificationLog, error)
	// DeleteForTenantDay removes the tenant's entries for one day, the
	// operational escape hatch that enables a forced re-send.
	DeleteForTenantDay(tenantID uint, day time.Time) (int64, error)
	PurgeForContract(contractID uint) error
}

// Repositories holds all repository instances
type Repositories struct {
	Tenant          TenantRepository
	Contract        ContractRepository
	Settings        NotificationSettingsRepository
	NotificationLog NotificationLogRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:          NewTenantRepository(db),
		Contract:        NewContractRepository(db),
		Settings:        NewNotificationSettingsRepository(db),
		NotificationLog: NewNotificationLogRepository(db),
	}
}
