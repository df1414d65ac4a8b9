package repository

import (
	"time"

	"github.com/RenewalHub/RenewalHub/app/models"
	"gorm.io/gorm"
)

// contractRepository implements the ContractRepository interface
type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository instance
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

// Create creates a new contract in the database
func (r *contractRepository) Create(contract *models.Contract) error {
	return r.db.Create(contract).Error
}

// GetByID retrieves a contract by its ID (soft-deleted rows are excluded)
func (r *contractRepository) GetByID(id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// Update updates an existing contract in the database
func (r *contractRepository) Update(contract *models.Contract) error {
	return r.db.Save(contract).Error
}

// PatchFields applies a partial field update to a contract
func (r *contractRepository) PatchFields(id uint, fields map[string]any) error {
	return r.db.Model(&models.Contract{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete sets the delete marker; the contract stays in storage but is
// permanently excluded from scanning and notification
func (r *contractRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Contract{}, id).Error
}

// HardDelete removes the contract row and purges ledger entries referencing it
func (r *contractRepository) HardDelete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&models.NotificationLog{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Contract{}, id).Error
	})
}

// ListRenewingInWindow returns the tenant's non-deleted contracts with a
// renewal date inside [from, until], ascending by renewal date. Bounding the
// window keeps the scan query cheap; gorm's soft-delete scope hides deleted rows.
func (r *contractRepository) ListRenewingInWindow(tenantID uint, from, until time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.
		Where("tenant_id = ? AND renewal_date IS NOT NULL AND renewal_date >= ? AND renewal_date <= ?", tenantID, from, until).
		Order("renewal_date ASC").
		Find(&contracts).Error
	return contracts, err
}

// CountByTenant returns the number of non-deleted contracts for a tenant
func (r *contractRepository) CountByTenant(tenantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Contract{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
