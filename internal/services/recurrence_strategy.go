package services

import (
	"fmt"
	"time"

	"fincontrol/internal/core"
)

// RecurrenceStrategy computes the next due date of a recurring bill.
type RecurrenceStrategy interface {
	Next(due core.Date) core.Date
}

// MonthlyStrategy keeps the day of month, clamped to the last day of a
// shorter month (Jan 31 -> Feb 29 in a leap year).
type MonthlyStrategy struct{}

func (MonthlyStrategy) Next(due core.Date) core.Date {
	return addMonthsClamped(due, 1)
}

// YearlyStrategy keeps month and day; Feb 29 becomes Feb 28 in common years.
type YearlyStrategy struct{}

func (YearlyStrategy) Next(due core.Date) core.Date {
	return addMonthsClamped(due, 12)
}

func addMonthsClamped(d core.Date, months int) core.Date {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

var recurrenceStrategies = map[core.Recurrence]RecurrenceStrategy{
	core.Mensal: MonthlyStrategy{},
	core.Anual:  YearlyStrategy{},
}

// GetRecurrenceStrategy returns the strategy for r. NoRecurrence has none.
func GetRecurrenceStrategy(r core.Recurrence) (RecurrenceStrategy, error) {
	s, ok := recurrenceStrategies[r]
	if !ok {
		return nil, fmt.Errorf("no recurrence strategy for %q", r)
	}
	return s, nil
}

// RegisterRecurrenceStrategy adds or replaces the strategy for r.
func RegisterRecurrenceStrategy(r core.Recurrence, s RecurrenceStrategy) {
	recurrenceStrategies[r] = s
}

// NextDueDate returns the following occurrence and whether the bill recurs at all.
func NextDueDate(due core.Date, r core.Recurrence) (core.Date, bool) {
	s, err := GetRecurrenceStrategy(r)
	if err != nil {
		return core.Date{}, false
	}
	return s.Next(due), true
}
