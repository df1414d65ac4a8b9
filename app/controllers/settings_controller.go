package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/app/repository"
)

var validate = validator.New()

// SettingsPayload is the settings-save request body. Saving settings for an
// unknown tenant creates the tenant row, matching the "created on first
// settings save" lifecycle.
type SettingsPayload struct {
	TenantName           string `json:"tenant_name" validate:"omitempty,min=2,max=150"`
	DefaultCurrency      string `json:"default_currency" validate:"omitempty,len=3"`
	Recipients           string `json:"recipients"`
	RenewalAlertsEnabled bool   `json:"renewal_alerts_enabled"`
	WeeklyDigestEnabled  bool   `json:"weekly_digest_enabled"`
	NoticeDays           int    `json:"notice_days" validate:"min=1,max=365"`
}

func parseTenantID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid tenant id")
	}
	return uint(id), nil
}

// HandleUpsertSettings saves a tenant's notification preferences.
func HandleUpsertSettings(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	var payload SettingsPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}
	if err := validate.Struct(&payload); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	repos := repository.GetGlobalRepositories()

	tenant, err := repos.Tenant.GetByID(tenantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tenant = &models.Tenant{
			ID:                tenantID,
			Name:              payload.TenantName,
			DefaultCurrency:   payload.DefaultCurrency,
			DefaultNoticeDays: payload.NoticeDays,
		}
		if tenant.DefaultCurrency == "" {
			tenant.DefaultCurrency = models.DEFAULT_CURRENCY
		}
		if err := repos.Tenant.Create(tenant); err != nil {
			log.Printf("failed to create tenant %d: %v", tenantID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "could not create tenant"})
		}
	} else if err != nil {
		log.Printf("failed to load tenant %d: %v", tenantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "could not load tenant"})
	}

	settings := &models.NotificationSettings{
		TenantID:             tenantID,
		Recipients:           payload.Recipients,
		RenewalAlertsEnabled: payload.RenewalAlertsEnabled,
		WeeklyDigestEnabled:  payload.WeeklyDigestEnabled,
		NoticeDays:           payload.NoticeDays,
	}
	if err := repos.Settings.Upsert(settings); err != nil {
		log.Printf("failed to upsert settings for tenant %d: %v", tenantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "could not save settings"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "settings": settings})
}

// HandleListNotifications exposes a tenant's recent ledger rows for
// inspection.
func HandleListNotifications(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	limit := c.QueryInt("limit", 100)
	entries, err := repository.GetGlobalRepositories().NotificationLog.ListByTenant(tenantID, limit)
	if err != nil {
		log.Printf("failed to list notifications for tenant %d: %v", tenantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "could not load notifications"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "notifications": entries})
}

// HandleResetToday deletes the tenant's ledger entries for the current UTC
// day. It exists solely as the operational escape hatch for a forced re-send:
// the next scan invocation will process the tenant again.
func HandleResetToday(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	removed, err := repository.GetGlobalRepositories().NotificationLog.DeleteForTenantDay(tenantID, time.Now().UTC())
	if err != nil {
		log.Printf("failed to reset ledger for tenant %d: %v", tenantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "could not reset ledger"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "removed": removed})
}
