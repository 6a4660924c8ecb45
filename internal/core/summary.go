package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthlyBucket holds the entradas/saidas totals of one YYYY-MM month.
type MonthlyBucket struct {
	Month    string
	Entradas decimal.Decimal
	Saidas   decimal.Decimal
}

// Saldo is computed from the bucket, never stored.
func (b MonthlyBucket) Saldo() decimal.Decimal {
	return b.Entradas.Sub(b.Saidas)
}

// Stats summarises a transaction snapshot.
type Stats struct {
	TotalEntradas      decimal.Decimal
	TotalSaidas        decimal.Decimal
	Saldo              decimal.Decimal
	TransacoesRecentes int
}

// CategoryTotal is the sum of saidas for one categoria.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// AggregateByMonth groups transactions into one bucket per distinct month,
// ordered ascending by month key. Months without transactions get no bucket.
// A transaction without a valid date fails the whole call with a
// *ValidationError naming it.
func AggregateByMonth(txs []Transaction) ([]MonthlyBucket, error) {
	byMonth := make(map[string]*MonthlyBucket)
	keys := make([]string, 0)

	for _, t := range txs {
		if err := t.Date.Validate(); err != nil {
			return nil, invalid("transaction "+t.ID, "data", err)
		}
		key := t.Date.MonthKey()
		b, ok := byMonth[key]
		if !ok {
			b = &MonthlyBucket{Month: key, Entradas: decimal.Zero, Saidas: decimal.Zero}
			byMonth[key] = b
			keys = append(keys, key)
		}
		if t.Type == Entrada {
			b.Entradas = b.Entradas.Add(t.Amount)
		} else {
			b.Saidas = b.Saidas.Add(t.Amount)
		}
	}

	sort.Strings(keys)
	out := make([]MonthlyBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byMonth[k])
	}
	return out, nil
}

// ComputeStats reduces transactions to totals. Every non-entrada tipo counts
// as saida. TransacoesRecentes is just len(txs): windowing is the caller's job.
func ComputeStats(txs []Transaction) Stats {
	entradas, saidas := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if t.Type == Entrada {
			entradas = entradas.Add(t.Amount)
		} else {
			saidas = saidas.Add(t.Amount)
		}
	}
	return Stats{
		TotalEntradas:      entradas,
		TotalSaidas:        saidas,
		Saldo:              entradas.Sub(saidas),
		TransacoesRecentes: len(txs),
	}
}

// CategoryBreakdown sums saidas per categoria, largest first.
func CategoryBreakdown(txs []Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type == Entrada {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
