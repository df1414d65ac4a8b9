package renewalscan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenewalHub/RenewalHub/app/models"
)

func (f *scanFixture) digest(now func() time.Time) *Digest {
	cfg := testConfig()
	cfg.Now = now
	return NewDigest(f.tenants, f.contracts, f.settings, f.ledger, f.dispatcher, cfg)
}

func TestDigestSharedRecipientAggregation(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Tenant A")
	f.addTenant(2, "Tenant B")
	f.addSettings(1, "ops@x.com", true, true)
	f.addSettings(2, "ops@x.com", true, true)
	f.addContract(10, 1, "Contract A", 3, nil)
	f.addContract(20, 2, "Contract B", 5, nil)

	summary, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Zero(t, summary.Errors)

	// One physical email with both rows.
	require.Len(t, f.dispatcher.sent, 1)
	msg := f.dispatcher.sent[0]
	assert.Equal(t, []string{"ops@x.com"}, msg.to)
	assert.Contains(t, msg.html, "Contract A")
	assert.Contains(t, msg.html, "Contract B")

	// But one ledger row per contributing tenant.
	require.Len(t, f.ledger.entries, 2)
	tenantIDs := []uint{f.ledger.entries[0].TenantID, f.ledger.entries[1].TenantID}
	assert.ElementsMatch(t, []uint{1, 2}, tenantIDs)
	for _, e := range f.ledger.entries {
		assert.Equal(t, models.NOTIFICATION_TYPE_WEEKLY_DIGEST, e.Type)
		assert.Equal(t, models.NOTIFICATION_STATUS_SENT, e.Status)
		assert.Nil(t, e.ContractID)
	}
}

func TestDigestWeekdayGate(t *testing.T) {
	tuesday := func() time.Time { return scanToday.AddDate(0, 0, 1) }

	f := newScanFixture()
	f.addTenant(1, "Tenant A")
	f.addSettings(1, "ops@x.com", true, true)
	f.addContract(10, 1, "Contract A", 3, nil)

	summary, err := f.digest(tuesday).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, f.dispatcher.sent)

	// Force overrides the gate.
	summary, err = f.digest(tuesday).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, summary.Forced)
}

func TestDigestForceNeverBypassesIdempotency(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Tenant A")
	f.addSettings(1, "ops@x.com", true, true)
	f.addContract(10, 1, "Contract A", 3, nil)

	first, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, first.Sent)

	second, err := f.digest(fixedNow).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, second.Sent)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, f.dispatcher.sent, 1)
	assert.Len(t, f.ledger.entries, 1)
}

func TestDigestBucketsAndDeterministicOrder(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Tenant A")
	f.addSettings(1, "ops@x.com", true, true)
	f.addContract(10, 1, "Week contract", 7, nil)
	f.addContract(11, 1, "Month contract", 8, nil)
	f.addContract(12, 1, "Later contract", 45, nil)
	f.addContract(13, 1, "Too far", 61, nil)

	summary, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Sent)

	html := f.dispatcher.sent[0].html
	assert.Contains(t, html, "This week")
	assert.Contains(t, html, "This month")
	assert.Contains(t, html, "Later")
	assert.Contains(t, html, "Week contract")
	assert.Contains(t, html, "Month contract")
	assert.Contains(t, html, "Later contract")
	assert.NotContains(t, html, "Too far")

	assert.Less(t, strings.Index(html, "Week contract"), strings.Index(html, "Month contract"))
	assert.Less(t, strings.Index(html, "Month contract"), strings.Index(html, "Later contract"))
}

func TestDigestSkipsTenantsWithNothingDue(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Empty tenant")
	f.addSettings(1, "ops@x.com", true, true)

	summary, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, f.ledger.entries)
}

func TestDigestDisabledTenantSkipped(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Alerts only")
	f.addSettings(1, "ops@x.com", true, false)
	f.addContract(10, 1, "Contract A", 3, nil)

	summary, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, f.dispatcher.sent)
}

func TestDigestDispatchFailureRecordsErrorPerTenant(t *testing.T) {
	f := newScanFixture()
	f.addTenant(1, "Tenant A")
	f.addTenant(2, "Tenant B")
	f.addSettings(1, "ops@x.com", true, true)
	f.addSettings(2, "ops@x.com", true, true)
	f.addContract(10, 1, "Contract A", 3, nil)
	f.addContract(20, 2, "Contract B", 5, nil)
	f.dispatcher.errs = []error{errors.New("smtp down")}

	summary, err := f.digest(fixedNow).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Equal(t, 1, summary.Errors)

	require.Len(t, f.ledger.entries, 2)
	for _, e := range f.ledger.entries {
		assert.Equal(t, models.NOTIFICATION_STATUS_ERROR, e.Status)
		assert.Contains(t, e.ErrorDetail, "smtp down")
	}

	// Error rows satisfy the guard: a same-day rerun stays quiet.
	second, err := f.digest(fixedNow).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, second.Sent)
	assert.Len(t, f.ledger.entries, 2)
}
