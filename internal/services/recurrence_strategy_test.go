package services

import (
	"testing"

	"fincontrol/internal/core"
)

func TestMonthlyStrategy_Next(t *testing.T) {
	s := MonthlyStrategy{}

	tests := []struct {
		name string
		due  core.Date
		want core.Date
	}{
		{name: "mid month", due: core.NewDate(2024, 1, 15), want: core.NewDate(2024, 2, 15)},
		{name: "jan 31 leap year", due: core.NewDate(2024, 1, 31), want: core.NewDate(2024, 2, 29)},
		{name: "jan 31 common year", due: core.NewDate(2023, 1, 31), want: core.NewDate(2023, 2, 28)},
		{name: "march 31 to april 30", due: core.NewDate(2024, 3, 31), want: core.NewDate(2024, 4, 30)},
		{name: "december rolls year", due: core.NewDate(2024, 12, 10), want: core.NewDate(2025, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Next(tt.due)
			if !got.Equal(tt.want.Time) {
				t.Errorf("MonthlyStrategy.Next(%s) = %s, want %s", tt.due, got, tt.want)
			}
		})
	}
}

func TestYearlyStrategy_Next(t *testing.T) {
	s := YearlyStrategy{}

	tests := []struct {
		name string
		due  core.Date
		want core.Date
	}{
		{name: "plain", due: core.NewDate(2024, 5, 10), want: core.NewDate(2025, 5, 10)},
		{name: "feb 29 to feb 28", due: core.NewDate(2024, 2, 29), want: core.NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Next(tt.due)
			if !got.Equal(tt.want.Time) {
				t.Errorf("YearlyStrategy.Next(%s) = %s, want %s", tt.due, got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	due := core.NewDate(2024, 6, 1)

	if _, ok := NextDueDate(due, core.NoRecurrence); ok {
		t.Error("NextDueDate() with no recurrence should report false")
	}

	next, ok := NextDueDate(due, core.Mensal)
	if !ok || next.String() != "2024-07-01" {
		t.Errorf("NextDueDate(mensal) = %s, %v", next, ok)
	}

	next, ok = NextDueDate(due, core.Anual)
	if !ok || next.String() != "2025-06-01" {
		t.Errorf("NextDueDate(anual) = %s, %v", next, ok)
	}
}

func TestGetRecurrenceStrategy_Unknown(t *testing.T) {
	if _, err := GetRecurrenceStrategy("semanal"); err == nil {
		t.Error("expected error for unknown recurrence")
	}
}
