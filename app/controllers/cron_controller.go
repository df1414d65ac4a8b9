package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RenewalHub/RenewalHub/app/repository"
	"github.com/RenewalHub/RenewalHub/internal/pkg/cache"
	"github.com/RenewalHub/RenewalHub/internal/pkg/mail"
	"github.com/RenewalHub/RenewalHub/internal/pkg/renewalscan"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
)

// scanLockTTL bounds how long a crashed pass can hold the advisory lock.
const scanLockTTL = 10 * time.Minute

func newScanner() *renewalscan.Scanner {
	repos := repository.GetGlobalRepositories()
	dispatcher := mail.NewBatchDispatcher(mail.NewMailerFromEnv())
	return renewalscan.NewScanner(repos.Tenant, repos.Contract, repos.Settings, repos.NotificationLog, dispatcher, renewalscan.ConfigFromEnv())
}

func newDigest() *renewalscan.Digest {
	repos := repository.GetGlobalRepositories()
	dispatcher := mail.NewBatchDispatcher(mail.NewMailerFromEnv())
	return renewalscan.NewDigest(repos.Tenant, repos.Contract, repos.Settings, repos.NotificationLog, dispatcher, renewalscan.ConfigFromEnv())
}

// acquireScanLock takes the best-effort per-day mutex when a cache server is
// configured. Without one the ledger's same-day guard is the only protection,
// which is acceptable at daily/weekly invocation frequency.
func acquireScanLock(kind string) (func(), bool) {
	if !cache.Enabled() {
		return func() {}, true
	}
	key := "scanlock:" + kind + ":" + timeutil.DayKey(time.Now())
	ok, err := cache.AcquireLock(key, scanLockTTL)
	if err != nil {
		log.Printf("scan lock unavailable, proceeding without it: %v", err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}
	return func() {
		if err := cache.ReleaseLock(key); err != nil {
			log.Printf("failed to release scan lock %s: %v", key, err)
		}
	}, true
}

// HandleRenewalScan runs one full renewal-alert pass and reports the
// aggregate counters to the invoking scheduler.
func HandleRenewalScan(c *fiber.Ctx) error {
	release, ok := acquireScanLock("renewal-alert")
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "error": "scan already in progress"})
	}
	defer release()

	summary, err := newScanner().Run(c.Context())
	if err != nil {
		log.Printf("renewal scan failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "scan failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"runId":   summary.RunID,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
		"ranAt":   summary.RanAt,
	})
}

// HandleWeeklyDigest runs the digest pass. The force flag bypasses the
// weekday gate for manual testing but never the idempotency guard.
func HandleWeeklyDigest(c *fiber.Ctx) error {
	force := c.QueryBool("force", false)

	release, ok := acquireScanLock("weekly-digest")
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"ok": false, "error": "digest already in progress"})
	}
	defer release()

	summary, err := newDigest().Run(c.Context(), force)
	if err != nil {
		log.Printf("weekly digest failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "digest failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"runId":   summary.RunID,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
		"ranAt":   summary.RanAt,
		"forced":  summary.Forced,
	})
}
