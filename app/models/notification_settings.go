package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// NotificationSettings stores per-tenant notification preferences, one row
// per tenant. Recipients are kept as a comma-separated set the way the
// settings form submits them; RecipientList normalizes on read.
type NotificationSettings struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	TenantID             uint      `gorm:"uniqueIndex" json:"tenant_id"`
	Recipients           string    `gorm:"type:text" json:"recipients"`
	RenewalAlertsEnabled bool      `gorm:"default:true" json:"renewal_alerts_enabled"`
	WeeklyDigestEnabled  bool      `gorm:"default:false" json:"weekly_digest_enabled"`
	NoticeDays           int       `gorm:"default:30" json:"notice_days" validate:"min=1,max=365"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *NotificationSettings) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// RecipientList splits the stored comma-separated recipients into a trimmed,
// case-insensitively de-duplicated list. Order follows first appearance.
func (s *NotificationSettings) RecipientList() []string {
	if s == nil || s.Recipients == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(s.Recipients, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// HasRecipients reports whether at least one usable recipient is configured.
func (s *NotificationSettings) HasRecipients() bool {
	return len(s.RecipientList()) > 0
}
