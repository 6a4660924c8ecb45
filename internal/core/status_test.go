package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	today := NewDate(2024, 6, 1)
	cases := []struct {
		name   string
		status BillStatus
		due    Date
		want   BillStatus
	}{
		{"pendente past due", Pendente, NewDate(2024, 1, 1), Atrasado},
		{"pago past due stays pago", Pago, NewDate(2024, 1, 1), Pago},
		{"pago future stays pago", Pago, NewDate(2030, 1, 1), Pago},
		{"due today is not late", Pendente, NewDate(2024, 6, 1), Pendente},
		{"due yesterday is late", Pendente, NewDate(2024, 5, 31), Atrasado},
		{"future", Pendente, NewDate(2024, 7, 1), Pendente},
		{"stored atrasado recomputed once due moves", Atrasado, NewDate(2024, 7, 1), Pendente},
		{"stored atrasado still late", Atrasado, NewDate(2024, 5, 1), Atrasado},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Bill{Status: tc.status, DueDate: tc.due}
			assert.Equal(t, tc.want, EffectiveStatus(b, today))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		name    string
		current string
		target  string
		want    string
	}{
		{"quarter", "50", "200", "25"},
		{"clamped", "300", "200", "100"},
		{"exact", "200", "200", "100"},
		{"zero target", "50", "0", "0"},
		{"negative target", "50", "-10", "0"},
		{"nothing saved", "0", "200", "0"},
		{"negative current passes through", "-20", "200", "-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProgressPercent(Goal{Current: d(tc.current), Target: d(tc.target)})
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestUpcomingBills(t *testing.T) {
	today := NewDate(2024, 6, 1)
	bills := []Bill{
		{ID: "late", Status: Pendente, DueDate: NewDate(2024, 5, 30)},
		{ID: "edge", Status: Pendente, DueDate: NewDate(2024, 6, 8)},
		{ID: "today", Status: Pendente, DueDate: NewDate(2024, 6, 1)},
		{ID: "paid", Status: Pago, DueDate: NewDate(2024, 6, 3)},
		{ID: "far", Status: Pendente, DueDate: NewDate(2024, 6, 9)},
	}
	got := UpcomingBills(bills, today, 7)

	ids := make([]string, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"today", "edge"}, ids)
	assert.Empty(t, UpcomingBills(nil, today, 7))
}
