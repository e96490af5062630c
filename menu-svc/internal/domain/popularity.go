package domain

import "time"

// Sorted set keys maintained by agg-svc from order events.
const (
	PopularAllTimeKey     = "popular:alltime"
	popularDailyKeyPrefix = "popular:daily:"
)

func PopularDailyKey(day time.Time) string {
	return popularDailyKeyPrefix + day.UTC().Format("2006-01-02")
}

func (p Period) Key(now time.Time) string {
	if p == PeriodToday {
		return PopularDailyKey(now)
	}
	return PopularAllTimeKey
}
