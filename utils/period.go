package utils

import (
	"errors"
	"time"
)

// MaxCustomPeriod bounds custom report ranges
const MaxCustomPeriod = 90 * 24 * time.Hour

// Period is a half open reporting window [Start, End)
type Period struct {
	Type  string    `json:"type"`
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// ResolvePeriod turns a report period name into a date range relative to now.
// "day" is today, "week" the last 7 days including today, "month" the last
// 30 days including today and "custom" the inclusive YYYY-MM-DD range
// startDate..endDate.
func ResolvePeriod(period, startDate, endDate string, now time.Time) (Period, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	switch period {
	case "", "day":
		return Period{Type: "day", Start: today, End: tomorrow}, nil
	case "week":
		return Period{Type: period, Start: today.AddDate(0, 0, -6), End: tomorrow}, nil
	case "month":
		return Period{Type: period, Start: today.AddDate(0, 0, -29), End: tomorrow}, nil
	case "custom":
		if startDate == "" || endDate == "" {
			return Period{}, errors.New("both start_date and end_date are required for custom period")
		}
		start, err := time.ParseInLocation("2006-01-02", startDate, now.Location())
		if err != nil {
			return Period{}, errors.New("start date must be in YYYY-MM-DD format")
		}
		end, err := time.ParseInLocation("2006-01-02", endDate, now.Location())
		if err != nil {
			return Period{}, errors.New("end date must be in YYYY-MM-DD format")
		}
		// include the whole end date
		end = end.AddDate(0, 0, 1)
		if !end.After(start) {
			return Period{}, errors.New("end date must not be before start date")
		}
		if end.Sub(start) > MaxCustomPeriod {
			return Period{}, errors.New("date range cannot exceed 90 days")
		}
		return Period{Type: period, Start: start, End: end}, nil
	}
	return Period{}, errors.New("period must be day, week, month, or custom")
}
