package renewalscan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/app/repository"
	"github.com/RenewalHub/RenewalHub/internal/pkg/mail"
	"github.com/RenewalHub/RenewalHub/internal/pkg/moneyfmt"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
	"github.com/RenewalHub/RenewalHub/internal/pkg/trigger"
	"gorm.io/gorm"
)

// DigestWeekday is the fixed UTC weekday the digest pass runs on.
const DigestWeekday = time.Monday

// DigestRow is one upcoming renewal as shown in a digest email.
type DigestRow struct {
	TenantID      uint
	TenantName    string
	ContractTitle string
	Counterparty  string
	RenewalDate   time.Time
	DaysUntil     int
	Bucket        trigger.Bucket
	MonthlyFee    string
}

// Digest produces one consolidated email per distinct recipient, aggregating
// upcoming renewals from every tenant that shares that recipient.
type Digest struct {
	tenants    repository.TenantRepository
	contracts  repository.ContractRepository
	settings   repository.NotificationSettingsRepository
	ledger     repository.NotificationLogRepository
	dispatcher mail.Dispatcher
	cfg        Config
}

func NewDigest(
	tenants repository.TenantRepository,
	contracts repository.ContractRepository,
	settings repository.NotificationSettingsRepository,
	ledger repository.NotificationLogRepository,
	dispatcher mail.Dispatcher,
	cfg Config,
) *Digest {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Digest{
		tenants:    tenants,
		contracts:  contracts,
		settings:   settings,
		ledger:     ledger,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Run executes the weekly digest pass. force bypasses the weekday gate for
// manual testing, but never the per-tenant idempotency check.
func (d *Digest) Run(ctx context.Context, force bool) (*Summary, error) {
	today := timeutil.StartOfDayUTC(d.cfg.Now())
	summary := &Summary{RunID: uuid.NewString(), RanAt: timeutil.DayKey(today), Forced: force}

	if !force && today.Weekday() != DigestWeekday {
		log.Infof("[Digest] run %s gated off: today is %s, digest day is %s", summary.RunID, today.Weekday(), DigestWeekday)
		return summary, nil
	}

	tenants, err := d.tenants.List()
	if err != nil {
		return nil, fmt.Errorf("loading tenants: %w", err)
	}

	perRecipient := make(map[string][]DigestRow)
	contributors := make(map[string][]uint) // recipient -> tenant ids feeding their digest
	until := today.AddDate(0, 0, trigger.DigestLookaheadDays)

	for i := range tenants {
		tenant := &tenants[i]

		settings, err := d.settings.GetByTenantID(tenant.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading settings for tenant %d: %w", tenant.ID, err)
		}
		if settings == nil || !settings.WeeklyDigestEnabled || !settings.HasRecipients() {
			summary.Skipped++
			continue
		}

		attempted, err := d.ledger.HasAttemptToday(tenant.ID, nil, models.NOTIFICATION_TYPE_WEEKLY_DIGEST, today)
		if err != nil {
			return nil, fmt.Errorf("ledger check for tenant %d: %w", tenant.ID, err)
		}
		if attempted {
			summary.Skipped++
			continue
		}

		contracts, err := d.contracts.ListRenewingInWindow(tenant.ID, today, until)
		if err != nil {
			return nil, fmt.Errorf("loading contracts for tenant %d: %w", tenant.ID, err)
		}

		rows := buildDigestRows(tenant, contracts, today)
		if len(rows) == 0 {
			// Nothing due: no email contribution and no ledger row, so a
			// later forced run the same day can still pick up new contracts.
			summary.Skipped++
			continue
		}

		for _, recipient := range settings.RecipientList() {
			perRecipient[recipient] = append(perRecipient[recipient], rows...)
			contributors[recipient] = append(contributors[recipient], tenant.ID)
		}
	}

	d.deliver(ctx, perRecipient, contributors, today, summary)

	log.Infof("[Digest] run %s done: sent=%d skipped=%d errors=%d forced=%t", summary.RunID, summary.Sent, summary.Skipped, summary.Errors, force)
	return summary, nil
}

func buildDigestRows(tenant *models.Tenant, contracts []models.Contract, today time.Time) []DigestRow {
	var rows []DigestRow
	for i := range contracts {
		c := &contracts[i]
		if c.RenewalDate == nil || c.IsDeleted() {
			continue
		}
		daysUntil := timeutil.DayDifference(*c.RenewalDate, today)
		bucket, ok := trigger.BucketFor(daysUntil)
		if !ok {
			continue
		}
		rows = append(rows, DigestRow{
			TenantID:      tenant.ID,
			TenantName:    tenant.Name,
			ContractTitle: c.Title,
			Counterparty:  c.Counterparty,
			RenewalDate:   timeutil.StartOfDayUTC(*c.RenewalDate),
			DaysUntil:     daysUntil,
			Bucket:        bucket,
			MonthlyFee:    moneyfmt.Format(c.FeeMonthly(), tenant.Currency(), "en", 0),
		})
	}
	return rows
}

// deliver sends one email per recipient and fans out the ledger writes: on
// success one SENT row per contributing tenant in a single transaction, on
// failure one ERROR row per contributing tenant so a same-day rerun does not
// re-spam them. Recipients are processed in sorted order for determinism.
func (d *Digest) deliver(ctx context.Context, perRecipient map[string][]DigestRow, contributors map[string][]uint, today time.Time, summary *Summary) {
	recipients := make([]string, 0, len(perRecipient))
	for r := range perRecipient {
		recipients = append(recipients, r)
	}
	sort.Strings(recipients)

	for _, recipient := range recipients {
		rows := perRecipient[recipient]
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].RenewalDate.Equal(rows[j].RenewalDate) {
				return rows[i].RenewalDate.Before(rows[j].RenewalDate)
			}
			return rows[i].TenantName < rows[j].TenantName
		})

		subject, htmlBody := RenderDigest(rows)
		err := d.dispatcher.Dispatch(ctx, []string{recipient}, subject, htmlBody)
		if err != nil {
			summary.Errors++
			log.Errorf("[Digest] dispatch to %s failed: %v", recipient, err)
			d.recordFailures(contributors[recipient], recipient, subject, today, err)
			continue
		}

		summary.Sent++
		if err := d.ledger.RecordDigestDeliveries(contributors[recipient], recipient, subject, today); err != nil {
			log.Errorf("[Digest] failed to record deliveries for recipient %s: %v", recipient, err)
		}
	}
}

func (d *Digest) recordFailures(tenantIDs []uint, recipient, subject string, today time.Time, cause error) {
	now := d.cfg.Now().UTC()
	for _, tenantID := range tenantIDs {
		entry := &models.NotificationLog{
			TenantID:    tenantID,
			Type:        models.NOTIFICATION_TYPE_WEEKLY_DIGEST,
			DayKey:      timeutil.DayKey(today),
			SentAt:      now,
			Status:      models.NOTIFICATION_STATUS_ERROR,
			Recipients:  recipient,
			Subject:     subject,
			ErrorDetail: cause.Error(),
		}
		if err := d.ledger.RecordAttempt(entry); err != nil && !errors.Is(err, repository.ErrDuplicateAttempt) {
			log.Errorf("[Digest] failed to record error entry for tenant %d: %v", tenantID, err)
		}
	}
}
