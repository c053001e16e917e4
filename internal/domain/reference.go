package domain

import "time"

const (
	astroDayHour   = 13
	astroDayMinute = 15
)

// AstronomicalDayReference anchors now to 13:15 UTC of the current
// astronomical day: today when the UTC hour is 12 or later, yesterday otherwise.
func AstronomicalDayReference(now time.Time) time.Time {
	now = now.UTC()
	ref := time.Date(now.Year(), now.Month(), now.Day(), astroDayHour, astroDayMinute, 0, 0, time.UTC)
	if now.Hour() < 12 {
		ref = ref.AddDate(0, 0, -1)
	}
	return ref
}
