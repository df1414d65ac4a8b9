package trigger

// Bucket names the closed day-interval a contract falls into for digest
// display purposes.
type Bucket string

const (
	BucketThisWeek  Bucket = "this_week"  // 0-7 days out
	BucketThisMonth Bucket = "this_month" // 8-30 days out
	BucketLater     Bucket = "later"      // 31-60 days out
)

// DigestLookaheadDays bounds the digest window; contracts further out are
// excluded entirely.
const DigestLookaheadDays = 60

// BucketFor places a days-until value into its digest bucket. The second
// return is false for values outside the digest window (past renewals or
// beyond the look-ahead).
func BucketFor(daysUntil int) (Bucket, bool) {
	switch {
	case daysUntil < 0:
		return "", false
	case daysUntil <= 7:
		return BucketThisWeek, true
	case daysUntil <= 30:
		return BucketThisMonth, true
	case daysUntil <= DigestLookaheadDays:
		return BucketLater, true
	default:
		return "", false
	}
}
