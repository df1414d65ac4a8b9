package repository

import (
	"errors"
	"time"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
	"gorm.io/gorm"
)

// notificationLogRepository implements the NotificationLogRepository interface
type notificationLogRepository struct {
	db *gorm.DB
}

// NewNotificationLogRepository creates a new ledger repository instance
func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

// HasAttemptToday reports whether any entry exists for the key within the
// UTC calendar day. Both SENT and ERROR rows count toward the guard.
func (r *notificationLogRepository) HasAttemptToday(tenantID uint, contractID *uint, notificationType string, day time.Time) (bool, error) {
	query := r.db.Model(&models.NotificationLog{}).
		Where("tenant_id = ? AND type = ? AND day_key = ?", tenantID, notificationType, timeutil.DayKey(day)).
		Where("status IN ?", []string{models.NOTIFICATION_STATUS_SENT, models.NOTIFICATION_STATUS_ERROR})
	if contractID != nil {
		query = query.Where("contract_id = ?", *contractID)
	} else {
		query = query.Where("contract_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordAttempt appends one ledger row. Rows are never updated in place; a
// duplicate-key collision means a concurrent pass won the race and is
// surfaced as ErrDuplicateAttempt.
func (r *notificationLogRepository) RecordAttempt(entry *models.NotificationLog) error {
	if entry.DayKey == "" {
		entry.DayKey = timeutil.DayKey(entry.SentAt)
	}
	err := r.db.Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAttempt
	}
	return err
}

// RecordDigestDeliveries writes one WEEKLY_DIGEST row per contributing tenant
// inside a single transaction, so each tenant's own audit trail is complete
// even though only one physical email per recipient was sent.
func (r *notificationLogRepository) RecordDigestDeliveries(tenantIDs []uint, recipients, subject string, day time.Time) error {
	if len(tenantIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	dayKey := timeutil.DayKey(day)
	entries := make([]models.NotificationLog, 0, len(tenantIDs))
	for _, tenantID := range tenantIDs {
		entries = append(entries, models.NotificationLog{
			TenantID:   tenantID,
			ContractID: nil,
			Type:       models.NOTIFICATION_TYPE_WEEKLY_DIGEST,
			DayKey:     dayKey,
			SentAt:     now,
			Status:     models.NOTIFICATION_STATUS_SENT,
			Recipients: recipients,
			Subject:    subject,
		})
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
}

// ListByTenant returns the tenant's most recent ledger rows for inspection
func (r *notificationLogRepository) ListByTenant(tenantID uint, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.NotificationLog
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DeleteForTenantDay removes all of the tenant's entries for one UTC day,
// enabling a forced re-send on the next scan invocation.
func (r *notificationLogRepository) DeleteForTenantDay(tenantID uint, day time.Time) (int64, error) {
	res := r.db.Where("tenant_id = ? AND day_key = ?", tenantID, timeutil.DayKey(day)).
		Delete(&models.NotificationLog{})
	return res.RowsAffected, res.Error
}

// PurgeForContract drops ledger rows referencing a hard-deleted contract
func (r *notificationLogRepository) PurgeForContract(contractID uint) error {
	return r.db.Where("contract_id = ?", contractID).Delete(&models.NotificationLog{}).Error
}
