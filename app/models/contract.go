package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CONTRACT_STATUS_ACTIVE     = "ACTIVE"
	CONTRACT_STATUS_REVIEW     = "REVIEW"
	CONTRACT_STATUS_TERMINATED = "TERMINATED"
)

// Contract is a tracked agreement with an optional renewal date. Soft-deleted
// contracts are invisible to every part of the notification subsystem; gorm's
// DeletedAt handling excludes them from all default queries.
type Contract struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	TenantID           uint           `gorm:"index" json:"tenant_id"`
	Tenant             Tenant         `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Title              string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=1,max=255"`
	Counterparty       string         `gorm:"type:varchar(255)" json:"counterparty"`
	Status             string         `gorm:"type:varchar(20);default:'ACTIVE'" json:"status" validate:"oneof=ACTIVE REVIEW TERMINATED"`
	RenewalDate        *time.Time     `gorm:"type:date;index" json:"renewal_date"`
	NoticeDaysOverride *int           `json:"notice_days_override"`
	MonthlyFee         *float64       `json:"monthly_fee"`
	AnnualFee          *float64       `json:"annual_fee"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsDeleted reports whether the soft-delete marker is set.
func (c *Contract) IsDeleted() bool {
	return c.DeletedAt.Valid
}

// FeeMonthly returns the monthly fee, deriving it from the annual fee when
// only that is stored.
func (c *Contract) FeeMonthly() *float64 {
	if c.MonthlyFee != nil {
		return c.MonthlyFee
	}
	if c.AnnualFee != nil {
		derived := *c.AnnualFee / 12
		return &derived
	}
	return nil
}

// FeeAnnual returns the annual fee, deriving it from the monthly fee when
// only that is stored.
func (c *Contract) FeeAnnual() *float64 {
	if c.AnnualFee != nil {
		return c.AnnualFee
	}
	if c.MonthlyFee != nil {
		derived := *c.MonthlyFee * 12
		return &derived
	}
	return nil
}
