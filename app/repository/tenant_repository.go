package repository

import (
	"github.com/RenewalHub/RenewalHub/app/models"
	"gorm.io/gorm"
)

// tenantRepository implements the TenantRepository interface
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository instance
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create creates a new tenant in the database
func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

// GetByID retrieves a tenant by its ID
func (r *tenantRepository) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Update updates an existing tenant in the database
func (r *tenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}

// List retrieves all tenants ordered by ID
func (r *tenantRepository) List() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Order("id ASC").Find(&tenants).Error
	return tenants, err
}

// Count returns the total number of tenants
func (r *tenantRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).Count(&count).Error
	return count, err
}
