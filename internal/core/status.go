package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectiveStatus classifies a bill for display. Pago is terminal; anything
// else is atrasado once the due date is strictly before today, pendente
// otherwise. The result is derived, never a stored transition.
func EffectiveStatus(b Bill, today Date) BillStatus {
	if b.Status == Pago {
		return Pago
	}
	if b.DueDate.Before(today) {
		return Atrasado
	}
	return Pendente
}

// ProgressPercent is valor_atual/valor_alvo*100 capped at 100. A target of
// zero or less yields 0. Negative current values are passed through.
func ProgressPercent(g Goal) decimal.Decimal {
	if !g.Target.IsPositive() {
		return decimal.Zero
	}
	p := g.Current.Mul(hundred).Div(g.Target)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// UpcomingBills returns the bills still pendente that fall due between today
// and today+days inclusive, earliest first.
func UpcomingBills(bills []Bill, today Date, days int) []Bill {
	limit := today.AddDays(days)
	out := make([]Bill, 0)
	for _, b := range bills {
		if EffectiveStatus(b, today) != Pendente {
			continue
		}
		if b.DueDate.Before(today) || limit.Before(b.DueDate) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}
