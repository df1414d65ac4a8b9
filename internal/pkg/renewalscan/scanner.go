// Package renewalscan runs the daily renewal-alert pass and the weekly
// digest pass across all tenants.
package renewalscan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/app/repository"
	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
	"github.com/RenewalHub/RenewalHub/internal/pkg/mail"
	"github.com/RenewalHub/RenewalHub/internal/pkg/timeutil"
	"github.com/RenewalHub/RenewalHub/internal/pkg/trigger"
	"gorm.io/gorm"
)

const (
	DefaultLookaheadDays = 90
	DefaultDispatchDelay = 600 * time.Millisecond
)

// Summary is the aggregate outcome of one pass, returned to the invoking
// scheduler/operator.
type Summary struct {
	RunID   string `json:"runId"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
	RanAt   string `json:"ranAt"`
	Forced  bool   `json:"forced,omitempty"`
}

// Config carries the orchestrator knobs. Now is injectable for tests.
type Config struct {
	LookaheadDays int
	DispatchDelay time.Duration
	Now           func() time.Time
}

// ConfigFromEnv builds the production configuration.
func ConfigFromEnv() Config {
	return Config{
		LookaheadDays: env.GetEnvInt("SCAN_LOOKAHEAD_DAYS", DefaultLookaheadDays),
		DispatchDelay: time.Duration(env.GetEnvInt("SCAN_DISPATCH_DELAY_MS", int(DefaultDispatchDelay/time.Millisecond))) * time.Millisecond,
		Now:           time.Now,
	}
}

// Scanner iterates all tenants and their contracts, applies the trigger
// evaluator, consults the ledger, and dispatches renewal alerts.
type Scanner struct {
	tenants    repository.TenantRepository
	contracts  repository.ContractRepository
	settings   repository.NotificationSettingsRepository
	ledger     repository.NotificationLogRepository
	dispatcher mail.Dispatcher
	cfg        Config
}

func NewScanner(
	tenants repository.TenantRepository,
	contracts repository.ContractRepository,
	settings repository.NotificationSettingsRepository,
	ledger repository.NotificationLogRepository,
	dispatcher mail.Dispatcher,
	cfg Config,
) *Scanner {
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = DefaultLookaheadDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scanner{
		tenants:    tenants,
		contracts:  contracts,
		settings:   settings,
		ledger:     ledger,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Run executes one full renewal-alert pass. Per-contract failures are
// recorded and counted but never abort the scan; only a tenant or contract
// load failure (a true infrastructure outage) surfaces as a top-level error.
func (s *Scanner) Run(ctx context.Context) (*Summary, error) {
	today := timeutil.StartOfDayUTC(s.cfg.Now())
	summary := &Summary{RunID: uuid.NewString(), RanAt: timeutil.DayKey(today)}
	log.Infof("[Scan] run %s starting for %s", summary.RunID, summary.RanAt)

	tenants, err := s.tenants.List()
	if err != nil {
		return nil, fmt.Errorf("loading tenants: %w", err)
	}

	until := today.AddDate(0, 0, s.cfg.LookaheadDays)
	for i := range tenants {
		tenant := &tenants[i]

		settings, err := s.settings.GetByTenantID(tenant.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading settings for tenant %d: %w", tenant.ID, err)
		}
		if settings == nil || !settings.RenewalAlertsEnabled || !settings.HasRecipients() {
			summary.Skipped++
			continue
		}

		contracts, err := s.contracts.ListRenewingInWindow(tenant.ID, today, until)
		if err != nil {
			return nil, fmt.Errorf("loading contracts for tenant %d: %w", tenant.ID, err)
		}

		for j := range contracts {
			s.processContract(ctx, tenant, settings, &contracts[j], today, summary)

			if s.cfg.DispatchDelay > 0 {
				select {
				case <-time.After(s.cfg.DispatchDelay):
				case <-ctx.Done():
					return summary, ctx.Err()
				}
			}
		}
	}

	log.Infof("[Scan] run %s done: sent=%d skipped=%d errors=%d", summary.RunID, summary.Sent, summary.Skipped, summary.Errors)
	return summary, nil
}

func (s *Scanner) processContract(ctx context.Context, tenant *models.Tenant, settings *models.NotificationSettings, contract *models.Contract, today time.Time, summary *Summary) {
	res := trigger.Evaluate(contract, settings, today)
	if !res.Due {
		return
	}

	attempted, err := s.ledger.HasAttemptToday(tenant.ID, &contract.ID, models.NOTIFICATION_TYPE_RENEWAL_ALERT, today)
	if err != nil {
		log.Errorf("[Scan] ledger check failed for contract %d: %v", contract.ID, err)
		summary.Errors++
		return
	}
	if attempted {
		summary.Skipped++
		return
	}

	recipients := settings.RecipientList()
	subject, htmlBody := RenderRenewalAlert(tenant, contract, res)

	dispatchErr := s.dispatcher.Dispatch(ctx, recipients, subject, htmlBody)
	if errors.Is(dispatchErr, mail.ErrNoRecipients) {
		// Not an attempt; nothing to record.
		summary.Skipped++
		return
	}

	contractID := contract.ID
	entry := &models.NotificationLog{
		TenantID:   tenant.ID,
		ContractID: &contractID,
		Type:       models.NOTIFICATION_TYPE_RENEWAL_ALERT,
		DayKey:     timeutil.DayKey(today),
		SentAt:     s.cfg.Now().UTC(),
		Recipients: joinRecipients(recipients),
		Subject:    subject,
	}
	if dispatchErr != nil {
		entry.Status = models.NOTIFICATION_STATUS_ERROR
		entry.ErrorDetail = dispatchErr.Error()
		summary.Errors++
		log.Errorf("[Scan] dispatch failed for contract %d (tenant %d): %v", contract.ID, tenant.ID, dispatchErr)
	} else {
		entry.Status = models.NOTIFICATION_STATUS_SENT
		summary.Sent++
	}

	if err := s.ledger.RecordAttempt(entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			// A concurrent pass recorded this key first; it owns the attempt.
			log.Warnf("[Scan] duplicate ledger entry for contract %d, treating as already handled", contract.ID)
			if entry.Status == models.NOTIFICATION_STATUS_SENT {
				summary.Sent--
				summary.Skipped++
			}
			return
		}
		log.Errorf("[Scan] failed to record ledger entry for contract %d: %v", contract.ID, err)
	}
}
