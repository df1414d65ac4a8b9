package repository

import (
	"github.com/RenewalHub/RenewalHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notificationSettingsRepository implements the NotificationSettingsRepository interface
type notificationSettingsRepository struct {
	db *gorm.DB
}

// NewNotificationSettingsRepository creates a new settings repository instance
func NewNotificationSettingsRepository(db *gorm.DB) NotificationSettingsRepository {
	return &notificationSettingsRepository{db: db}
}

// GetByTenantID retrieves the settings row for a tenant
func (r *notificationSettingsRepository) GetByTenantID(tenantID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert inserts or updates the tenant's settings row keyed on tenant_id
func (r *notificationSettingsRepository) Upsert(settings *models.NotificationSettings) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recipients", "renewal_alerts_enabled", "weekly_digest_enabled", "notice_days", "updated_at",
		}),
	}).Create(settings).Error
}
