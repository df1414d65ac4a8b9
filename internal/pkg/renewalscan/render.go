package renewalscan

import (
	"fmt"
	"strings"

	"github.com/RenewalHub/RenewalHub/app/models"
	"github.com/RenewalHub/RenewalHub/internal/pkg/moneyfmt"
	"github.com/RenewalHub/RenewalHub/internal/pkg/trigger"
)

func joinRecipients(recipients []string) string {
	return strings.Join(recipients, ", ")
}

func urgencyHeading(u trigger.Urgency) string {
	switch u {
	case trigger.UrgencyCritical:
		return "Action required: contract renews tomorrow"
	case trigger.UrgencyHigh:
		return "Renewal imminent"
	case trigger.UrgencyElevated:
		return "Renewal coming up"
	case trigger.UrgencyNotice:
		return "Renewal on the horizon"
	default:
		return "Upcoming renewal"
	}
}

// RenderRenewalAlert builds the subject and HTML body for a single-contract
// alert. The subject always carries the day count so the ledger row stays
// meaningful on its own.
func RenderRenewalAlert(tenant *models.Tenant, contract *models.Contract, res trigger.Result) (subject, htmlBody string) {
	dayWord := "days"
	if res.DaysUntil == 1 {
		dayWord = "day"
	}
	subject = fmt.Sprintf("Contract renewal in %d %s: %s", res.DaysUntil, dayWord, contract.Title)

	currency := tenant.Currency()
	monthly := moneyfmt.Format(contract.FeeMonthly(), currency, "en", 0)
	annual := moneyfmt.Format(contract.FeeAnnual(), currency, "en", 0)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", urgencyHeading(res.Urgency))
	fmt.Fprintf(&b, "<p><strong>%s</strong>", contract.Title)
	if contract.Counterparty != "" {
		fmt.Fprintf(&b, " with %s", contract.Counterparty)
	}
	fmt.Fprintf(&b, " renews in <strong>%d %s</strong>", res.DaysUntil, dayWord)
	if contract.RenewalDate != nil {
		fmt.Fprintf(&b, " on %s", contract.RenewalDate.UTC().Format("2006-01-02"))
	}
	b.WriteString(".</p>")
	fmt.Fprintf(&b, "<p>Monthly fee: %s<br/>Annual fee: %s</p>", monthly, annual)
	fmt.Fprintf(&b, "<p>Notice period: %d days.</p>", res.NoticeDays)

	return subject, b.String()
}

// RenderDigest builds the subject and HTML body of a weekly digest email for
// one recipient, grouped by display bucket.
func RenderDigest(rows []DigestRow) (subject, htmlBody string) {
	subject = fmt.Sprintf("Weekly renewal digest: %d upcoming renewal(s)", len(rows))

	buckets := map[trigger.Bucket][]DigestRow{}
	for _, row := range rows {
		buckets[row.Bucket] = append(buckets[row.Bucket], row)
	}

	var b strings.Builder
	b.WriteString("<h2>Your weekly renewal digest</h2>")
	for _, section := range []struct {
		bucket  trigger.Bucket
		heading string
	}{
		{trigger.BucketThisWeek, "This week"},
		{trigger.BucketThisMonth, "This month"},
		{trigger.BucketLater, "Later"},
	} {
		entries := buckets[section.bucket]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<h3>%s</h3><ul>", section.heading)
		for _, row := range entries {
			fmt.Fprintf(&b, "<li><strong>%s</strong> (%s) renews %s, in %d day(s), %s/mo</li>",
				row.ContractTitle, row.TenantName, row.RenewalDate.Format("2006-01-02"), row.DaysUntil, row.MonthlyFee)
		}
		b.WriteString("</ul>")
	}

	return subject, b.String()
}
