package models

import (
	"time"
)

const (
	NOTIFICATION_TYPE_RENEWAL_ALERT = "RENEWAL_ALERT"
	NOTIFICATION_TYPE_WEEKLY_DIGEST = "WEEKLY_DIGEST"

	NOTIFICATION_STATUS_SENT  = "SENT"
	NOTIFICATION_STATUS_ERROR = "ERROR"
)

// NotificationLog is the idempotency ledger: one append-only row per dispatch
// attempt, successful or failed. The composite unique index on
// (tenant_id, contract_id, type, day_key) turns the same-day duplicate guard
// into a hard storage constraint for contract-scoped alerts; digest rows
// carry a NULL contract id and are guarded by the day-window query instead.
type NotificationLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"index;uniqueIndex:ux_notification_attempt,priority:1" json:"tenant_id"`
	ContractID  *uint     `gorm:"uniqueIndex:ux_notification_attempt,priority:2" json:"contract_id"`
	Type        string    `gorm:"type:varchar(20);uniqueIndex:ux_notification_attempt,priority:3" json:"type"`
	DayKey      string    `gorm:"type:char(10);index;uniqueIndex:ux_notification_attempt,priority:4" json:"day_key"`
	SentAt      time.Time `json:"sent_at"`
	Status      string    `gorm:"type:varchar(10)" json:"status"`
	Recipients  string    `gorm:"type:text" json:"recipients"`
	Subject     string    `gorm:"type:varchar(255)" json:"subject"`
	ErrorDetail string    `gorm:"type:text" json:"error_detail,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CountsTowardGuard reports whether this row blocks a same-day re-send.
// Both outcomes do: a failed attempt must not cause infinite same-day retries.
func (n *NotificationLog) CountsTowardGuard() bool {
	return n.Status == NOTIFICATION_STATUS_SENT || n.Status == NOTIFICATION_STATUS_ERROR
}
