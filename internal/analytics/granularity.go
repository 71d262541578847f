package analytics

import "time"

// Granularity is the chart bucket size for a period.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// GranularityFor picks the chart bucket size for a lookback: daily up to a
// month, weekly up to a quarter, monthly beyond.
func GranularityFor(days int) Granularity {
	switch {
	case days <= 30:
		return GranularityDaily
	case days <= 90:
		return GranularityWeekly
	default:
		return GranularityMonthly
	}
}

// BucketKey renders the sortable chart bucket an instant falls into,
// evaluated in the marketplace timezone. Weekly buckets start on Sunday.
func BucketKey(at time.Time, granularity Granularity, loc *time.Location) string {
	local := at.In(loc)
	switch granularity {
	case GranularityWeekly:
		weekStart := local.AddDate(0, 0, -int(local.Weekday()))
		return weekStart.Format("2006-01-02")
	case GranularityMonthly:
		return local.Format("2006-01")
	default:
		return local.Format("2006-01-02")
	}
}
