package models

import (
	"time"
)

const DEFAULT_CURRENCY = "USD"

// Tenant is a company/account owning contracts and notification settings.
// Created on first settings save; never hard-deleted by this subsystem.
type Tenant struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	DefaultCurrency   string    `gorm:"type:char(3);default:'USD'" json:"default_currency"`
	DefaultNoticeDays int       `gorm:"default:30" json:"default_notice_days"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Currency returns the tenant currency with the global fallback applied.
func (t *Tenant) Currency() string {
	if t.DefaultCurrency == "" {
		return DEFAULT_CURRENCY
	}
	return t.DefaultCurrency
}
