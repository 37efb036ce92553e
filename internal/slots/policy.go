// Package slots holds the pure slot policy: the fixed hour catalog,
// default open hours per weekday and the open/close toggle.
package slots

import (
	"fmt"
	"sort"
	"time"

	"slotbot/internal/models"
)

// DefaultWeekdayHours is the evening template applied to Monday-Friday
// when a day is first touched.
var DefaultWeekdayHours = []string{"18:00", "19:00", "20:00"}

// AllHours returns the full bookable hour catalog, 10:00-21:00 inclusive,
// one-hour granularity, ascending.
func AllHours() []string {
	hours := make([]string, 0, models.LastHour-models.FirstHour+1)
	for h := models.FirstHour; h <= models.LastHour; h++ {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}
	return hours
}

// InCatalog reports whether the hour label belongs to the fixed catalog.
func InCatalog(hour string) bool {
	for _, h := range AllHours() {
		if h == hour {
			return true
		}
	}
	return false
}

// DefaultOpenHours computes the open set for a freshly initialized day:
// the weekday template Monday-Friday, empty on weekends.
func DefaultOpenHours(date time.Time) []string {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return []string{}
	default:
		return append([]string(nil), DefaultWeekdayHours...)
	}
}

// Toggle flips the hour in the day's open set: removes it when present,
// inserts it otherwise. The open set stays in ascending order. Toggling
// the same hour twice restores the original set.
func Toggle(day *models.Day, hour string) {
	for i, h := range day.Open {
		if h == hour {
			day.Open = append(day.Open[:i], day.Open[i+1:]...)
			return
		}
	}
	day.Open = append(day.Open, hour)
	sort.Strings(day.Open)
}
